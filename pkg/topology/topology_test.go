package topology

import (
	"fmt"
	"testing"

	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"github.com/talismancer/popcorn-migrate/pkg/kernel"
)

type failingKernel struct{}

func (failingKernel) GetNodeInfo() (int32, [kernel.MaxNodes]kernel.NodeInfo, error) {
	var nodes [kernel.MaxNodes]kernel.NodeInfo
	return -1, nodes, fmt.Errorf("simulated query failure")
}

func (failingKernel) GetThreadStatus() (kernel.ThreadStatus, error) {
	return kernel.ThreadStatus{}, fmt.Errorf("simulated query failure")
}

func (failingKernel) Migrate(int32, *arch.RegSet) error {
	return fmt.Errorf("should not be called")
}

func twoNodeKernel() *kernel.Fake {
	var nodes [kernel.MaxNodes]kernel.NodeInfo
	nodes[0] = kernel.NodeInfo{Available: true, Arch: arch.X86_64, Distance: 0}
	nodes[1] = kernel.NodeInfo{Available: true, Arch: arch.AArch64, Distance: 1}
	return kernel.NewFake(0, nodes)
}

func TestNodeAvailableOutOfRange(t *testing.T) {
	c := New()
	if err := c.Init(twoNodeKernel()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, nid := range []int32{-1, kernel.MaxNodes, kernel.MaxNodes + 100} {
		if c.NodeAvailable(nid) {
			t.Errorf("NodeAvailable(%d) = true, want false", nid)
		}
	}
}

func TestInitFailureMarksEverythingUnavailable(t *testing.T) {
	c := New()
	err := c.Init(failingKernel{})
	if err == nil {
		t.Fatal("Init: want error, got nil")
	}
	for nid := int32(0); nid < kernel.MaxNodes; nid++ {
		if c.NodeAvailable(nid) {
			t.Errorf("NodeAvailable(%d) = true after failed init", nid)
		}
		if got := c.Arch(nid); got != arch.Unknown {
			t.Errorf("Arch(%d) = %v after failed init, want Unknown", nid, got)
		}
	}
	if got := c.DefaultNode(); got != -1 {
		t.Errorf("DefaultNode() = %d after failed init, want -1", got)
	}
}

func TestAvailableImpliesKnownArch(t *testing.T) {
	c := New()
	if err := c.Init(twoNodeKernel()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for nid := int32(0); nid < kernel.MaxNodes; nid++ {
		if c.NodeAvailable(nid) && c.Arch(nid) == arch.Unknown {
			t.Errorf("node %d is available but arch is Unknown", nid)
		}
	}
}

func TestNearestForeignArch(t *testing.T) {
	var nodes [kernel.MaxNodes]kernel.NodeInfo
	nodes[0] = kernel.NodeInfo{Available: true, Arch: arch.X86_64, Distance: 0}
	nodes[1] = kernel.NodeInfo{Available: true, Arch: arch.X86_64, Distance: 1}
	nodes[2] = kernel.NodeInfo{Available: true, Arch: arch.POWERPC64, Distance: 5}
	nodes[3] = kernel.NodeInfo{Available: true, Arch: arch.AArch64, Distance: 2}
	nodes[4] = kernel.NodeInfo{Available: false, Arch: arch.AArch64, Distance: 1}

	c := New()
	if err := c.Init(kernel.NewFake(0, nodes)); err != nil {
		t.Fatalf("Init: %v", err)
	}

	nid, ok := c.NearestForeignArch(arch.X86_64)
	if !ok {
		t.Fatal("NearestForeignArch: want ok=true")
	}
	if nid != 3 {
		t.Errorf("NearestForeignArch(X86_64) = %d, want 3 (nearest available foreign-arch node)", nid)
	}

	if _, ok := c.NearestForeignArch(arch.Arch(99)); !ok {
		// Every available node has an arch different from an arch that
		// doesn't exist in the table; any of them qualifies.
	} else {
		t.Log("NearestForeignArch with a bogus local arch matched some node, as expected")
	}
}

func TestNearestForeignArchNoneAvailable(t *testing.T) {
	var nodes [kernel.MaxNodes]kernel.NodeInfo
	nodes[0] = kernel.NodeInfo{Available: true, Arch: arch.X86_64, Distance: 0}
	c := New()
	if err := c.Init(kernel.NewFake(0, nodes)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, ok := c.NearestForeignArch(arch.X86_64); ok {
		t.Error("NearestForeignArch: want ok=false when no foreign-arch node exists")
	}
}

func TestCurrentNidFailureReturnsMinusOne(t *testing.T) {
	if got := CurrentNid(failingKernel{}); got != -1 {
		t.Errorf("CurrentNid() = %d on query failure, want -1", got)
	}
}

func TestCurrentArchFollowsCurrentNid(t *testing.T) {
	c := New()
	fake := twoNodeKernel()
	if err := c.Init(fake); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := c.CurrentArch(fake); got != arch.X86_64 {
		t.Errorf("CurrentArch() = %v, want X86_64 (node 0's arch)", got)
	}
}
