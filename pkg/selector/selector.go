// Package selector implements C2, the migration-point selector
// (spec.md §4.1): three interchangeable strategies that decide, at a
// given return address or schedule lookup, whether a thread should
// migrate and to which node. Exactly one of EnvRange/SignalTrigger feeds
// check_migrate in a given build; ScheduleTable is consulted separately
// by migrate_schedule (spec.md §4.6).
package selector

import (
	"os"
	"strconv"
	"sync"

	"github.com/talismancer/popcorn-migrate/internal/hosttid"
	"github.com/talismancer/popcorn-migrate/internal/migratelog"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"github.com/talismancer/popcorn-migrate/pkg/kernel"
	"github.com/talismancer/popcorn-migrate/pkg/topology"
)

// NoNode is the sentinel "NONE" decision (spec.md §4.1).
const NoNode int32 = -1

// Decider is the common shape of the two decide(return_address) -> nid
// strategies (spec.md §4.1). pkg/shim's CheckMigrate entry point is
// generic over this interface so a build picks exactly one
// implementation to wire in, per spec.md's "chosen at build time;
// exactly one is active".
type Decider interface {
	Decide(returnAddr uintptr) (nid int32, ok bool)
}

// envNames returns the env-range variable pair for a, or ("", "") for an
// architecture the env-range strategy does not recognize (spec.md §6).
func envNames(a arch.Arch) (start, end string) {
	switch a {
	case arch.AArch64:
		return "AARCH64_MIGRATE_START", "AARCH64_MIGRATE_END"
	case arch.POWERPC64:
		return "POWERPC64_MIGRATE_START", "POWERPC64_MIGRATE_END"
	case arch.X86_64:
		return "X86_64_MIGRATE_START", "X86_64_MIGRATE_END"
	default:
		return "", ""
	}
}

// EnvRange implements the env-range strategy (spec.md §4.1): a migration
// is requested the first time a thread's return address falls inside
// the local ISA's configured [start, end) range. Per spec.md §9's Open
// Question, the destination is resolved via topo.NearestForeignArch
// rather than the original's hard-coded per-ISA node constants (see
// SPEC_FULL.md §4).
type EnvRange struct {
	topo *topology.Cache

	once       sync.Once
	start, end uint64
	configured bool

	mu       sync.Mutex
	migrated map[int32]bool
}

// NewEnvRange returns an EnvRange strategy that resolves destinations
// against topo. Environment variables are read lazily, on first Decide,
// matching the original's process-constructor timing closely enough
// that tests may set os.Setenv before the first call.
func NewEnvRange(topo *topology.Cache) *EnvRange {
	return &EnvRange{topo: topo, migrated: make(map[int32]bool)}
}

func (e *EnvRange) configure() {
	e.once.Do(func() {
		startVar, endVar := envNames(arch.Local)
		if startVar == "" {
			return
		}
		startStr, startOk := os.LookupEnv(startVar)
		endStr, endOk := os.LookupEnv(endVar)
		if !startOk || !endOk {
			return
		}
		start, errStart := strconv.ParseUint(startStr, 16, 64)
		end, errEnd := strconv.ParseUint(endStr, 16, 64)
		if errStart != nil || errEnd != nil {
			return
		}
		e.start, e.end, e.configured = start, end, true
	})
}

// Decide implements Decider. A NULL (zero) return address behaves as
// "outside any range" (spec.md §4.1, edge cases).
func (e *EnvRange) Decide(returnAddr uintptr) (int32, bool) {
	e.configure()
	if !e.configured || returnAddr == 0 {
		return NoNode, false
	}

	tid := hosttid.Current()
	e.mu.Lock()
	if e.migrated[tid] {
		e.mu.Unlock()
		return NoNode, false
	}
	addr := uint64(returnAddr)
	if addr < e.start || addr >= e.end {
		e.mu.Unlock()
		return NoNode, false
	}
	// Once the flag is set for a thread, Decide returns NONE for that
	// thread forever after (spec.md §3 invariant), regardless of the
	// outcome of the node lookup below.
	e.migrated[tid] = true
	e.mu.Unlock()

	nid, ok := e.topo.NearestForeignArch(arch.Local)
	if !ok {
		migratelog.Warningf("selector: env-range range matched but no foreign-arch node is available")
		return NoNode, false
	}
	return nid, true
}

// SignalTrigger implements the signal-trigger strategy (spec.md §4.1):
// Decide returns the kernel-proposed destination node whenever one is
// set, and NONE otherwise. The out-of-band orchestrator that sets the
// trigger is the kernel's concern, not this package's (spec.md §1).
type SignalTrigger struct {
	Kernel kernel.Kernel
}

// NewSignalTrigger returns a SignalTrigger strategy backed by k.
func NewSignalTrigger(k kernel.Kernel) *SignalTrigger {
	return &SignalTrigger{Kernel: k}
}

// Decide implements Decider. The return address is unused by this
// strategy; it exists only to satisfy the common Decider shape.
func (s *SignalTrigger) Decide(uintptr) (int32, bool) {
	status, err := s.Kernel.GetThreadStatus()
	if err != nil || status.ProposedNid < 0 {
		return NoNode, false
	}
	return status.ProposedNid, true
}

// ScheduleKey identifies one (region, logical thread) pair in the
// scheduled-mapping strategy (spec.md §4.1, "Scheduled mapping").
type ScheduleKey struct {
	Region        uint64
	LogicalThread int32
}

// ScheduleTable implements the scheduled-mapping strategy: a
// region/logical-thread-id -> node-id table consulted by
// migrate_schedule (spec.md §4.6), populated by whatever out-of-scope
// orchestrator owns the region-to-node mapping (spec.md §1).
type ScheduleTable struct {
	mu sync.RWMutex
	m  map[ScheduleKey]int32
}

// NewScheduleTable returns an empty ScheduleTable.
func NewScheduleTable() *ScheduleTable {
	return &ScheduleTable{m: make(map[ScheduleKey]int32)}
}

// Set installs the mapping for (region, logicalTid).
func (t *ScheduleTable) Set(region uint64, logicalTid int32, nid int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = make(map[ScheduleKey]int32)
	}
	t.m[ScheduleKey{Region: region, LogicalThread: logicalTid}] = nid
}

// Lookup implements spec.md §4.1's lookup(region_id, logical_thread_id).
func (t *ScheduleTable) Lookup(region uint64, logicalTid int32) (int32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nid, ok := t.m[ScheduleKey{Region: region, LogicalThread: logicalTid}]
	return nid, ok
}
