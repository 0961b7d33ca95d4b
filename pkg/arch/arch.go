// Package arch describes the instruction-set architectures a thread may be
// migrated between, and the register-set layouts the stack rewriter
// produces and consumes for each one.
package arch

import "fmt"

// Arch identifies the instruction-set architecture of a node or a register
// set. The zero value is Unknown so that a zeroed NodeInfo is never
// mistaken for a populated, available entry.
type Arch int

// The architectures the migration shim knows how to target. These match
// the "enum arch" constants in the original Popcorn migration library
// (ARCH_AARCH64, ARCH_POWERPC64, ARCH_X86_64, ARCH_UNKNOWN).
const (
	Unknown Arch = iota
	AArch64
	POWERPC64
	X86_64
)

// String implements fmt.Stringer.
func (a Arch) String() string {
	switch a {
	case AArch64:
		return "aarch64"
	case POWERPC64:
		return "powerpc64"
	case X86_64:
		return "x86_64"
	default:
		return fmt.Sprintf("arch(%d)", int(a))
	}
}

// Local is the architecture this package was built for. It is set by the
// per-GOARCH files in this package (arch_amd64.go, arch_arm64.go,
// arch_ppc64le.go) and is used by pkg/capture to tag the snapshot, by
// pkg/kernel.Fake to decide whether a migration is homogeneous, and by
// pkg/shim to resolve the local resumption trampoline.
var Local Arch
