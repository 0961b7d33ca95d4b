// Package hosttid gives the migration shim a real OS-thread identity to
// key thread-local state on, grounded on the call sites of the teacher's
// (unretrieved) pkg/hosttid package in subprocess_linux.go. A goroutine is
// not pinned to an OS thread unless the caller holds runtime.LockOSThread
// across the migration; every package in this module that consults
// Current documents that precondition, the same way subprocess_linux.go
// documents "the runtime OS thread must be locked" on createStub.
package hosttid

import "golang.org/x/sys/unix"

// Current returns the kernel thread id of the calling OS thread.
//
// Precondition: the caller must hold runtime.LockOSThread for the
// duration it cares about this value remaining valid; otherwise the Go
// scheduler may move the calling goroutine to a different OS thread
// between calls.
func Current() int32 {
	return int32(unix.Gettid())
}
