package shim

import (
	"reflect"

	"github.com/talismancer/popcorn-migrate/pkg/arch"
)

// active is the Shim that this build's local resumption trampoline (C6)
// re-enters. A process hosts exactly one migration shim; Activate
// registers it before any thread can possibly land on the destination
// side of a migration.
var active *Shim

// Activate registers s as the target of this binary's local resumption
// trampoline. Call it once, before spawning application threads — the
// same "write-once-before-threads" discipline spec.md §5 requires of
// the topology cache.
func (s *Shim) Activate() {
	active = s
}

// TrampolineAddr resolves the resumption-trampoline address (C6) for a
// destination architecture, the operation pkg/rewrite.TrampolineFunc
// needs to patch into a synthesized register set's instruction pointer
// (spec.md §4.4, step 1).
//
// For arch.Local this binary can give a real function pointer, obtained
// the way gVisor's ring0 platform resolves its own asm entry points: by
// taking the address of the Go function value. For any other
// architecture, the trampoline lives in a different node's binary
// built for that ISA; this process cannot compute that address itself,
// so it is resolved from ForeignTrampolines, a deployment-populated
// table (the symbol addresses of the peer binaries' own local
// trampolines, the same kind of out-of-band configuration spec.md §6
// already requires for kernel syscall opcodes).
func TrampolineAddr(dstArch arch.Arch) uintptr {
	if dstArch == arch.Local {
		return reflect.ValueOf(localReenter).Pointer()
	}
	return ForeignTrampolines[dstArch]
}

// ForeignTrampolines holds the resumption-trampoline address for every
// architecture other than arch.Local. Index with an arch.Arch value; the
// entry for arch.Local is unused (TrampolineAddr handles that case
// directly). A deployment resolves and fills these in at startup.
var ForeignTrampolines [4]uintptr
