package rewrite

import "github.com/talismancer/popcorn-migrate/pkg/arch"

// FakeEngine is an in-memory stand-in for the external stack-transform
// engine, used by this module's own tests. It does not perform a real
// cross-ISA transform; it only carries sp/fp across into the destination
// register set's ISA-specific slots, which is enough to exercise C4/C5's
// plumbing without a real rewriter.
type FakeEngine struct {
	// Fail makes every call to RewriteStack report failure while it is
	// set, simulating spec.md §8's "rewrite failure path" scenario.
	Fail bool
}

// RewriteStack implements Engine.
func (f *FakeEngine) RewriteStack(src *arch.RegSet, dstArch arch.Arch) (*arch.RegSet, bool) {
	if f.Fail {
		return nil, false
	}
	dst := &arch.RegSet{Tag: dstArch}
	sp, fp := src.SP(), src.FP()
	switch dstArch {
	case arch.AArch64:
		dst.AArch64.Sp = sp
		dst.AArch64.X[29] = fp
	case arch.POWERPC64:
		dst.POWERPC64.R[1] = sp
		dst.POWERPC64.R[31] = fp
	case arch.X86_64:
		dst.X86_64.Rsp = sp
		dst.X86_64.Rbp = fp
	default:
		return nil, false
	}
	return dst, true
}
