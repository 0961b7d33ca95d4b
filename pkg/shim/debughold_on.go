//go:build migrate_debughold
// +build migrate_debughold

package shim

import "sync/atomic"

// DebugHold gates the spin-wait immediately before CALLBACK (spec.md
// §4.5, "Debug hold"): a debugger attaching to the post-migration
// thread clears it to let execution proceed. Starts held (1) so a
// migrate_debughold build always stops here until something clears it.
var DebugHold int32 = 1

func debugHold() {
	for atomic.LoadInt32(&DebugHold) != 0 {
	}
}
