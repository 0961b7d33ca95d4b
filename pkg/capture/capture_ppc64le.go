//go:build ppc64le
// +build ppc64le

package capture

import "github.com/talismancer/popcorn-migrate/pkg/arch"

func captureLocal(out *arch.RegSet) {
	capturePOWERPC64(&out.POWERPC64)
}

// capturePOWERPC64 fills regs with the caller's r3-r12, r14-r29, r31 and
// r1 (sp).
// Implemented in capture_ppc64le.s.
//
//go:noescape
func capturePOWERPC64(regs *arch.RegSetPOWERPC64)
