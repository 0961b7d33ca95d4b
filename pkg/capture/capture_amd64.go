//go:build amd64
// +build amd64

package capture

import "github.com/talismancer/popcorn-migrate/pkg/arch"

func captureLocal(out *arch.RegSet) {
	captureAMD64(&out.X86_64)
}

// captureAMD64 fills regs with the caller's general-purpose registers and
// stack/frame pointer. Implemented in capture_amd64.s.
//
//go:noescape
func captureAMD64(regs *arch.RegSetX86_64)
