// Package kernel describes the three syscalls the distributed kernel
// exposes to the migration shim (spec.md §6): node topology, per-thread
// migration status, and the migration primitive itself. The actual
// kernel is out of this module's scope (spec.md §1); this package is the
// seam between the shim and whatever distributed kernel it's linked
// against, the same role gVisor's Platform interface plays between the
// sentry and whatever sandboxing backend (ptrace, KVM, systrap) is
// installed.
package kernel

import "github.com/talismancer/popcorn-migrate/pkg/arch"

// MaxNodes bounds the node id space (spec.md §3: "Fixed-size array
// indexed by node id in [0, MAX_NODES)").
const MaxNodes = 32

// NodeInfo is one entry of the topology the kernel reports at init.
type NodeInfo struct {
	Available bool
	Arch      arch.Arch
	// Distance is a signed hop metric; -1 means unknown (spec.md §3).
	Distance int32
}

// ThreadStatus is the kernel-owned, read-only-for-the-core per-thread
// migration status (spec.md §3).
type ThreadStatus struct {
	CurrentNid  int32
	ProposedNid int32
	PeerNid     int32
	PeerPid     int32
}

// Kernel is the syscall surface the migration shim consumes. Production
// code gets one backed by real syscalls (see LinuxKernel); tests get an
// in-memory Fake.
type Kernel interface {
	// GetNodeInfo fills the topology cache once at process start.
	// originNid is the sentinel "default node" the process originated
	// on, or -1 if the query failed.
	GetNodeInfo() (originNid int32, nodes [MaxNodes]NodeInfo, err error)

	// GetThreadStatus fetches the calling thread's migration status on
	// demand; the core never caches current_nid across suspension
	// points (spec.md §3).
	GetThreadStatus() (ThreadStatus, error)

	// Migrate invokes the kernel migration primitive for the calling
	// thread, requesting a transfer to nid with the given destination
	// register set. Its return value has the dual meaning spec.md §4.5
	// describes:
	//
	//   - Heterogeneous: on success this call does not return on this
	//     node; the destination node resumes at dst's instruction
	//     pointer. Whatever happens next is driven entirely by the
	//     Kernel implementation (see pkg/kernel.Fake's
	//     OnHeterogeneousResume for how this module simulates that
	//     in a single process for testing).
	//   - Homogeneous: this call returns in place; err is nil on
	//     success, non-nil on failure, and the caller's existing
	//     register set already suffices to resume.
	Migrate(nid int32, dst *arch.RegSet) error
}

// TriggerClearer is implemented by a Kernel that supports the
// signal-trigger selector strategy (spec.md §4.1). The migration shim's
// PUBLISH step calls ClearTrigger after installing the bootstrap record
// so the kernel does not re-propose the same destination on the next
// check_migrate (spec.md §4.5, PUBLISH: "If the signal-trigger strategy
// is in use, also clear the per-thread trigger flag").
type TriggerClearer interface {
	ClearTrigger()
}
