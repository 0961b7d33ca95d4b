// Package shim implements C5 (the migration shim's state machine) and
// C6 (the per-ISA resumption trampolines), plus the three public entry
// points of spec.md §4.6. This is the only component with non-trivial
// control flow: spec.md §4.5's double-entry discipline, where the same
// function serves as both the pre-migration call and the post-migration
// landing, distinguished solely by whether the per-thread bootstrap slot
// is null.
package shim

import (
	"runtime"
	"sync"

	"github.com/talismancer/popcorn-migrate/internal/hosttid"
	"github.com/talismancer/popcorn-migrate/internal/migratelog"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"github.com/talismancer/popcorn-migrate/pkg/capture"
	"github.com/talismancer/popcorn-migrate/pkg/kernel"
	"github.com/talismancer/popcorn-migrate/pkg/rewrite"
	"github.com/talismancer/popcorn-migrate/pkg/selector"
	"github.com/talismancer/popcorn-migrate/pkg/topology"
)

// bootstrapRecord is the "shim data" of spec.md §3: per-thread,
// transient, published just before TRANSFER and read exactly once on
// the destination.
type bootstrapRecord struct {
	callback     func(any)
	callbackData any
	regset       *arch.RegSet
	// postSyscall is reserved for trampoline convenience, as spec.md §3
	// describes; this module's trampolines don't currently use it.
	postSyscall uintptr
}

// slots is the well-known per-thread bootstrap slot of spec.md §6,
// keyed by real OS-thread id (internal/hosttid) rather than a goroutine
// identity, so it behaves like the thread-local word the original
// exposes via pthread_migrate_args(). No atomicity is required (spec.md
// notes "it is thread-private"); the mutex here only protects the
// backing map, which is genuinely shared.
var (
	slotMu sync.Mutex
	slots  = make(map[int32]*bootstrapRecord)
)

func slotGet(tid int32) *bootstrapRecord {
	slotMu.Lock()
	defer slotMu.Unlock()
	return slots[tid]
}

func slotPublish(tid int32, rec *bootstrapRecord) {
	slotMu.Lock()
	slots[tid] = rec
	slotMu.Unlock()
}

func slotClear(tid int32) {
	slotMu.Lock()
	delete(slots, tid)
	slotMu.Unlock()
}

// Shim owns one thread's view of C5: the topology it validates
// destinations against, the kernel it transfers through, and the C4
// adapter it rewrites through. A process normally constructs one Shim
// and shares it across all threads — none of its fields are mutated
// after construction, so no locking is needed on the Shim itself.
type Shim struct {
	Topo    *topology.Cache
	Kernel  kernel.Kernel
	Rewrite *rewrite.Adapter
}

// New returns a Shim wired to topo/k/rw. Call Activate once, before
// spawning application threads, so this Shim's resumption trampolines
// (C6) know which Shim to re-enter.
func New(topo *topology.Cache, k kernel.Kernel, rw *rewrite.Adapter) *Shim {
	return &Shim{Topo: topo, Kernel: k, Rewrite: rw}
}

// invoke is the C5 state machine (spec.md §4.5): ENTRY, VALIDATE,
// CAPTURE, REWRITE, PUBLISH, TRANSFER, then CALLBACK on whichever path
// TRANSFER resolves.
func (s *Shim) invoke(nid int32, callback func(any), data any) {
	tid := hosttid.Current()

	// ENTRY: a non-null bootstrap slot means this call is the
	// destination-side re-entry of a prior migration, not a fresh
	// request — skip straight to CALLBACK (spec.md §4.5, ENTRY).
	if rec := slotGet(tid); rec != nil {
		s.runCallback(tid, rec)
		return
	}

	// VALIDATE
	if !s.Topo.NodeAvailable(nid) {
		migratelog.WithFields(map[string]any{"nid": nid, "op": "migrate"}).
			Warningf("destination node is not available")
		return
	}

	// CAPTURE: the source register set is a local of this activation.
	// The destination register set (returned by the rewrite engine) and
	// the bootstrap record built in PUBLISH are heap values reached
	// through the slot map; they are not held in this frame.
	var src arch.RegSet
	capture.Capture(&src)

	// REWRITE
	dstArch := s.Topo.Arch(nid)
	dst, _, _, ok := s.Rewrite.Rewrite(&src, dstArch)
	if !ok {
		migratelog.WithFields(map[string]any{"nid": nid, "arch": dstArch, "op": "migrate"}).
			Warningf("stack rewrite failed")
		return
	}

	// PUBLISH
	rec := &bootstrapRecord{callback: callback, callbackData: data, regset: dst}
	slotPublish(tid, rec)
	if tc, ok := s.Kernel.(kernel.TriggerClearer); ok {
		tc.ClearTrigger()
	}

	// TRANSFER. See spec.md §4.5: on heterogeneous success a real
	// kernel does not return here. kernel.Fake instead re-enters this
	// Shim (see kernel.Fake.OnHeterogeneousResume and Shim.Reenter) and
	// then returns nil; by then CALLBACK has already cleared the
	// bootstrap slot, so the check below finds it empty. Homogeneous
	// success returns here with the slot still published.
	if err := s.Kernel.Migrate(nid, dst); err != nil {
		slotClear(tid)
		migratelog.WithFields(map[string]any{"nid": nid, "op": "migrate"}).
			Warningf("migration primitive failed: %v", err)
		return
	}

	if rec2 := slotGet(tid); rec2 != nil {
		s.runCallback(tid, rec2)
	}
}

// Reenter is the destination-side half of the double-entry discipline:
// resumption trampolines (C6) call this once the destination register
// file and stack are live. It is also what the heterogeneous branch of
// a real (or faked) kernel migration primitive calls in place of
// "jumping back into ENTRY", since Go has no way to actually transfer
// control to another node's instruction pointer.
func (s *Shim) Reenter() {
	tid := hosttid.Current()
	rec := slotGet(tid)
	if rec == nil {
		return
	}
	s.runCallback(tid, rec)
}

// runCallback is CALLBACK: the debug hold (if compiled in), the user
// callback, and clearing the bootstrap slot before returning to the
// caller (spec.md §4.5, §5 — "the shim must clear the bootstrap slot
// before return on every exit path").
func (s *Shim) runCallback(tid int32, rec *bootstrapRecord) {
	debugHold()
	if rec.callback != nil {
		rec.callback(rec.callbackData)
	}
	slotClear(tid)
}

// CheckMigrate implements spec.md §4.6's check_migrate: consult the
// selector at the caller's return address, and invoke the shim if a
// node is proposed and differs from the current node.
func (s *Shim) CheckMigrate(d selector.Decider, callback func(any), data any) {
	var returnAddr uintptr
	if pc, _, _, ok := runtime.Caller(1); ok {
		returnAddr = uintptr(pc)
	}
	nid, proposed := d.Decide(returnAddr)
	if !proposed {
		return
	}
	if nid == topology.CurrentNid(s.Kernel) {
		return
	}
	s.invoke(nid, callback, data)
}

// Migrate implements spec.md §4.6's migrate: invoke the shim unless the
// thread is already on nid.
func (s *Shim) Migrate(nid int32, callback func(any), data any) {
	if nid == topology.CurrentNid(s.Kernel) {
		return
	}
	s.invoke(nid, callback, data)
}

// MigrateSchedule implements spec.md §4.6's migrate_schedule: consult
// the scheduled-mapping strategy for (region, logicalTid), then behave
// like Migrate with the resulting node id. A lookup miss is treated the
// same as "no migration needed".
func (s *Shim) MigrateSchedule(table *selector.ScheduleTable, region uint64, logicalTid int32, callback func(any), data any) {
	nid, ok := table.Lookup(region, logicalTid)
	if !ok {
		return
	}
	if nid == topology.CurrentNid(s.Kernel) {
		return
	}
	s.invoke(nid, callback, data)
}
