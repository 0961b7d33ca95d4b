// Package topology implements C1, the process-wide topology cache
// (spec.md §4.2): a write-once-before-threads mirror of the kernel's
// per-node {available, arch, distance} table, plus the two thread-facing
// queries (current_arch, current_nid) that are deliberately never
// cached.
package topology

import (
	"fmt"

	"github.com/talismancer/popcorn-migrate/internal/migratelog"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"github.com/talismancer/popcorn-migrate/pkg/kernel"
)

// MaxNodes mirrors kernel.MaxNodes; re-exported so callers of this
// package don't need to import pkg/kernel just to size an array.
const MaxNodes = kernel.MaxNodes

// Cache is the process-wide, write-once node table. The zero value is
// not usable; construct with New.
//
// Per spec.md §5 ("written once, before any application thread runs"),
// Cache has no mutex: Init must complete before any other goroutine
// reads from it, and nothing mutates it afterwards.
type Cache struct {
	nodes  [MaxNodes]kernel.NodeInfo
	origin int32
}

// New returns a Cache with every node unavailable and the default node
// sentinel set to -1, the same "failed" state Init leaves behind on a
// query failure. Call Init before using it for real.
func New() *Cache {
	c := &Cache{origin: -1}
	for i := range c.nodes {
		c.nodes[i] = kernel.NodeInfo{Available: false, Arch: arch.Unknown, Distance: -1}
	}
	return c
}

// Init populates the cache from a single kernel query, as gVisor's own
// process-wide tables are populated by a single call before application
// threads are spawned. On failure, every entry is marked unavailable
// with arch Unknown, the default node is set to -1, and a diagnostic is
// emitted — spec.md §4.2 and §7 ("Topology query failure").
func (c *Cache) Init(k kernel.Kernel) error {
	origin, nodes, err := k.GetNodeInfo()
	if err != nil {
		migratelog.Warningf("topology: cannot retrieve node information: %v", err)
		for i := range c.nodes {
			c.nodes[i] = kernel.NodeInfo{Available: false, Arch: arch.Unknown, Distance: -1}
		}
		c.origin = -1
		return fmt.Errorf("topology: cannot retrieve node information: %w", err)
	}
	c.nodes = nodes
	c.origin = origin
	return nil
}

// NodeAvailable reports whether nid is a populated, available node.
// Always false outside [0, MaxNodes) (spec.md §4.2, §8 invariant).
func (c *Cache) NodeAvailable(nid int32) bool {
	if nid < 0 || int(nid) >= MaxNodes {
		return false
	}
	return c.nodes[nid].Available
}

// Arch returns the architecture of nid, or arch.Unknown if nid is out of
// range. For an unavailable node it returns the arch recorded for that
// entry.
func (c *Cache) Arch(nid int32) arch.Arch {
	if nid < 0 || int(nid) >= MaxNodes {
		return arch.Unknown
	}
	return c.nodes[nid].Arch
}

// DefaultNode returns the sentinel node the process originated on, or -1
// if topology initialization failed.
func (c *Cache) DefaultNode() int32 {
	return c.origin
}

// NearestForeignArch picks the available node closest to the caller (by
// the kernel-reported distance metric) whose architecture differs from
// local. It implements this module's resolution of spec.md §9's Open
// Question: rather than preserving the original's hard-coded per-ISA
// destination constants, the env-range selector asks the topology cache
// for the best available cross-ISA target (see SPEC_FULL.md §4).
//
// Returns ok=false if no such node exists.
func (c *Cache) NearestForeignArch(local arch.Arch) (int32, bool) {
	best := int32(-1)
	var bestDistance int32
	for i := range c.nodes {
		n := c.nodes[i]
		if !n.Available || n.Arch == local || n.Arch == arch.Unknown {
			continue
		}
		if n.Distance < 0 {
			// Unknown distance: only use it if nothing better is found.
			if best == -1 {
				best = int32(i)
				bestDistance = 1<<31 - 1
			}
			continue
		}
		if best == -1 || n.Distance < bestDistance {
			best = int32(i)
			bestDistance = n.Distance
		}
	}
	return best, best != -1
}

// CurrentNid fetches the calling thread's current node id from the
// kernel. It is never cached across suspension points (spec.md §3, §5):
// a thread's node can change underneath it the instant it migrates.
// Returns -1 if the kernel query fails (spec.md §7, "Thread-status query
// failure").
func CurrentNid(k kernel.Kernel) int32 {
	status, err := k.GetThreadStatus()
	if err != nil {
		return -1
	}
	return status.CurrentNid
}

// CurrentArch returns the architecture of the node the calling thread is
// presently on, or arch.Unknown if the thread-status query fails or the
// reported node is out of range (spec.md §4.2, §7).
func (c *Cache) CurrentArch(k kernel.Kernel) arch.Arch {
	return c.Arch(CurrentNid(k))
}
