//go:build arm64
// +build arm64

package shim

// localReenter is the AArch64 resumption trampoline (C6). A real
// assembly trampoline for this ISA must re-establish frame-pointer
// chaining (x29) and the link register (x30, already part of the
// synthesized register set) before anything can safely unwind through
// it; this Go build relies on the rewrite engine having produced a
// consistent x29/x30 pair and just re-enters the shim (C6, duty 2).
func localReenter() {
	if active != nil {
		active.Reenter()
	}
}
