package kernel

import (
	"fmt"
	"sync"

	"github.com/talismancer/popcorn-migrate/internal/hosttid"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
)

// Fake is an in-memory stand-in for a distributed kernel, used by this
// module's own tests and by cmd/migrate-demo. It tracks each OS thread's
// current node and simulates the dual homogeneous/heterogeneous TRANSFER
// semantics of spec.md §4.5 without a real second node.
type Fake struct {
	Origin int32
	Nodes  [MaxNodes]NodeInfo

	// OnHeterogeneousResume, if set, is invoked synchronously by Migrate
	// in place of a real cross-node jump whenever the destination node's
	// architecture differs from arch.Local. It models the kernel handing
	// control straight to the destination trampoline. Once the hook
	// returns, Migrate returns nil to its caller as well.
	OnHeterogeneousResume func(dst *arch.RegSet)

	mu          sync.Mutex
	currentNid  map[int32]int32
	proposedNid map[int32]int32
	failNext    bool
}

// NewFake builds a Fake with every thread starting on origin.
func NewFake(origin int32, nodes [MaxNodes]NodeInfo) *Fake {
	return &Fake{
		Origin:      origin,
		Nodes:       nodes,
		currentNid:  make(map[int32]int32),
		proposedNid: make(map[int32]int32),
	}
}

// FailNextMigrate makes the next call to Migrate on any thread return an
// error, simulating a kernel migration primitive failure (spec.md §8,
// scenario 5).
func (f *Fake) FailNextMigrate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = true
}

// SetProposed sets the kernel-proposed destination node for tid, as if an
// external orchestrator had raised the signal trigger (spec.md §4.1,
// signal-trigger strategy).
func (f *Fake) SetProposed(tid int32, nid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proposedNid[tid] = nid
}

// ClearTrigger implements kernel.TriggerClearer for the calling thread.
func (f *Fake) ClearTrigger() {
	tid := hosttid.Current()
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.proposedNid, tid)
}

// GetNodeInfo implements kernel.Kernel.
func (f *Fake) GetNodeInfo() (int32, [MaxNodes]NodeInfo, error) {
	return f.Origin, f.Nodes, nil
}

// GetThreadStatus implements kernel.Kernel.
func (f *Fake) GetThreadStatus() (ThreadStatus, error) {
	tid := hosttid.Current()
	f.mu.Lock()
	defer f.mu.Unlock()
	nid, ok := f.currentNid[tid]
	if !ok {
		nid = f.Origin
	}
	proposed, ok := f.proposedNid[tid]
	if !ok {
		proposed = -1
	}
	return ThreadStatus{CurrentNid: nid, ProposedNid: proposed, PeerNid: -1, PeerPid: -1}, nil
}

// Migrate implements kernel.Kernel.
func (f *Fake) Migrate(nid int32, dst *arch.RegSet) error {
	tid := hosttid.Current()

	f.mu.Lock()
	if f.failNext {
		f.failNext = false
		f.mu.Unlock()
		return fmt.Errorf("fake kernel: simulated migration failure")
	}
	if nid < 0 || int(nid) >= MaxNodes || !f.Nodes[nid].Available {
		f.mu.Unlock()
		return fmt.Errorf("fake kernel: node %d is not available", nid)
	}
	dstArch := f.Nodes[nid].Arch
	f.currentNid[tid] = nid
	delete(f.proposedNid, tid)
	f.mu.Unlock()

	if dstArch != arch.Local && f.OnHeterogeneousResume != nil {
		f.OnHeterogeneousResume(dst)
	}
	return nil
}
