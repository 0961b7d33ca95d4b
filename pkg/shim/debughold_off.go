//go:build !migrate_debughold
// +build !migrate_debughold

package shim

// debugHold is a no-op unless this package is built with the
// migrate_debughold tag (SPEC_FULL.md §4, "Debug hold"); production
// builds never pay for the spin-wait.
func debugHold() {}
