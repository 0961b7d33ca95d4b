//go:build arm64
// +build arm64

package capture

import "github.com/talismancer/popcorn-migrate/pkg/arch"

func captureLocal(out *arch.RegSet) {
	captureARM64(&out.AArch64)
}

// captureARM64 fills regs with the caller's x0-x17, x19-x26, x29 and sp;
// x18 and x27, x28, x30 are left untouched. Implemented in capture_arm64.s.
//
//go:noescape
func captureARM64(regs *arch.RegSetAArch64)
