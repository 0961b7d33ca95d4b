// Package rewrite implements C4, the thin adapter around the external
// cross-ISA stack-transform engine (spec.md §4.4). The engine itself —
// the thing that actually understands both ABIs' stack layouts well
// enough to produce an equivalent frame on the other side — is out of
// this module's scope (spec.md §1); this package only calls it, patches
// the resulting instruction pointer to the destination resumption
// trampoline, and extracts sp/fp.
package rewrite

import (
	"fmt"
	"time"

	"github.com/talismancer/popcorn-migrate/internal/migratelog"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
)

// Engine is the external stack-transform engine's contract (spec.md §6:
// "rewrite_stack(src_regs, dst_regs_out, dst_arch) -> success_boolean").
// Production code links against whatever engine the deployment ships;
// tests use FakeEngine.
type Engine interface {
	// RewriteStack produces a destination register set such that, if
	// dstArch's CPU is loaded with it and begins executing, the thread
	// observes a stack consistent with the logical call stack that
	// existed when src was captured — laid out per dstArch's ABI.
	RewriteStack(src *arch.RegSet, dstArch arch.Arch) (dst *arch.RegSet, ok bool)
}

// TrampolineFunc resolves the resumption trampoline address (C6) for a
// destination architecture. Implemented by pkg/shim, which is the only
// package that knows where its own trampolines live.
type TrampolineFunc func(dstArch arch.Arch) uintptr

// Adapter is the C4 adapter. The zero value is not usable; at minimum
// Engine must be set.
type Adapter struct {
	Engine Engine

	// Trampoline, if non-nil, supplies the destination instruction
	// pointer patched into dst.pc after a successful rewrite (spec.md
	// §4.4, step 1). Left nil only in tests that don't care about pc.
	Trampoline TrampolineFunc

	// TimeRewrite mirrors the original's _TIME_REWRITE instrumentation
	// (SPEC_FULL.md §4 "Stack-transform timing"): when set, each
	// Rewrite call logs how long Engine.RewriteStack took.
	TimeRewrite bool
}

// Rewrite implements C4's rewrite(src, dst_arch) -> (dst | FAIL)
// operation, plus the patch-and-extract steps spec.md §4.4 describes as
// part of the adapter's job. ok is false on engine failure; the caller
// (C5) treats that as a non-fatal "abandon the migration" error.
//
// dstArch must be one of the three supported architectures: the
// topology cache is the only source of a destination arch, and its
// invariant (spec.md §3: "if available, then arch ≠ UNKNOWN") means this
// should be unreachable. Spec.md §7 calls this case a fatal assertion,
// not a recoverable error, so an unsupported dstArch panics rather than
// returning ok=false.
func (a *Adapter) Rewrite(src *arch.RegSet, dstArch arch.Arch) (dst *arch.RegSet, sp, fp uint64, ok bool) {
	switch dstArch {
	case arch.AArch64, arch.POWERPC64, arch.X86_64:
	default:
		panic(fmt.Sprintf("rewrite: unsupported destination architecture %v; topology cache should never advertise this as available", dstArch))
	}

	var start time.Time
	if a.TimeRewrite {
		start = time.Now()
	}
	dst, ok = a.Engine.RewriteStack(src, dstArch)
	if a.TimeRewrite {
		migratelog.Debugf("rewrite: stack transformation took %s", time.Since(start))
	}
	if !ok {
		return nil, 0, 0, false
	}

	dst.Tag = dstArch
	if a.Trampoline != nil {
		dst.SetPC(uint64(a.Trampoline(dstArch)))
	}
	return dst, dst.SP(), dst.FP(), true
}
