//go:build ppc64le
// +build ppc64le

package shim

// localReenter is the POWERPC64 resumption trampoline (C6). The ELFv2
// ABI needs the TOC pointer (r2) live before any call can resolve a
// global entry point, and r31 as the frame pointer by convention; both
// are expected to already be consistent in the rewrite engine's
// synthesized register set, so this just re-enters the shim (C6, duty
// 2).
func localReenter() {
	if active != nil {
		active.Reenter()
	}
}
