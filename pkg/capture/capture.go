// Package capture implements C3 of the migration shim: snapshotting the
// calling thread's general-purpose register file, in the exact form the
// external stack-transform engine requires, without perturbing anything
// beyond saving the return address (spec.md §4.3).
//
// gVisor reads and writes raw machine registers through small
// architecture-specific assembly stubs wherever the Go runtime doesn't
// expose a register directly (its ring0/kvm platforms do this for the
// same reason: the register file of interest belongs to a context Go's
// calling convention doesn't surface). This package follows that shape:
// a thin per-GOARCH Go wrapper (capture_$GOARCH.go) over a NOSPLIT
// assembly routine (capture_$GOARCH.s) that copies the live registers
// into the caller-supplied struct.
package capture

import (
	"runtime"

	"github.com/talismancer/popcorn-migrate/pkg/arch"
)

// Capture snapshots the calling goroutine's local-ISA register state into
// out, tagging it with arch.Local. The instruction pointer recorded is
// the return address of the Capture call itself, obtained the portable
// way (runtime.Caller) rather than by reading the raw stack, since Go
// does not guarantee the physical return-address slot layout the way a C
// frame does.
//
// Precondition: the calling goroutine must hold runtime.LockOSThread —
// capturing registers is meaningless if the scheduler can move the
// goroutine to a different OS thread mid-snapshot.
func Capture(out *arch.RegSet) {
	out.Tag = arch.Local
	captureLocal(out)
	if pc, _, _, ok := runtime.Caller(1); ok {
		out.SetPC(uint64(pc))
	}
}
