//go:build linux
// +build linux

package kernel

import (
	"fmt"
	"unsafe"

	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"golang.org/x/sys/unix"
)

// Syscall opcode numbers are deployment-specific (spec.md §6: "values are
// deployment-specified"). A distributed-kernel deployment must set these
// before calling into LinuxKernel; the zero value deliberately fails
// closed rather than guessing a number that might collide with a real
// Linux syscall.
var (
	SyscallGetNodeInfo     uintptr
	SyscallGetThreadStatus uintptr
	SyscallMigrate         uintptr
)

// rawNodeInfo is the wire layout GET_NODE_INFO fills, matching the
// original Popcorn migration library's `struct node_info` (migrate.c):
// unsigned int status; int arch; int distance.
type rawNodeInfo struct {
	status   uint32
	archCode int32
	distance int32
}

// rawThreadStatus is the wire layout GET_THREAD_STATUS fills, matching
// migrate.c's `struct popcorn_thread_status`.
type rawThreadStatus struct {
	currentNid  int32
	proposedNid int32
	peerNid     int32
	peerPid     int32
}

// LinuxKernel drives the three syscalls through golang.org/x/sys/unix raw
// syscalls, the idiom the teacher's subprocess_linux.go uses throughout
// (unix.RawSyscall/RawSyscall6, errors read back as unix.Errno).
type LinuxKernel struct{}

// GetNodeInfo implements Kernel.
func (LinuxKernel) GetNodeInfo() (int32, [MaxNodes]NodeInfo, error) {
	var (
		origin int32
		raw    [MaxNodes]rawNodeInfo
		out    [MaxNodes]NodeInfo
	)
	if SyscallGetNodeInfo == 0 {
		return -1, out, fmt.Errorf("kernel: SyscallGetNodeInfo is not configured")
	}
	_, _, errno := unix.RawSyscall(SyscallGetNodeInfo,
		uintptr(unsafe.Pointer(&origin)),
		uintptr(unsafe.Pointer(&raw[0])),
		0)
	if errno != 0 {
		return -1, out, fmt.Errorf("kernel: GET_NODE_INFO syscall failed: %w", errno)
	}
	for i := range raw {
		out[i] = NodeInfo{
			Available: raw[i].status != 0,
			Arch:      arch.Arch(raw[i].archCode),
			Distance:  raw[i].distance,
		}
	}
	return origin, out, nil
}

// GetThreadStatus implements Kernel.
func (LinuxKernel) GetThreadStatus() (ThreadStatus, error) {
	var raw rawThreadStatus
	if SyscallGetThreadStatus == 0 {
		return ThreadStatus{}, fmt.Errorf("kernel: SyscallGetThreadStatus is not configured")
	}
	_, _, errno := unix.RawSyscall(SyscallGetThreadStatus, uintptr(unsafe.Pointer(&raw)), 0, 0)
	if errno != 0 {
		return ThreadStatus{}, fmt.Errorf("kernel: GET_THREAD_STATUS syscall failed: %w", errno)
	}
	return ThreadStatus{
		CurrentNid:  raw.currentNid,
		ProposedNid: raw.proposedNid,
		PeerNid:     raw.peerNid,
		PeerPid:     raw.peerPid,
	}, nil
}

// Migrate implements Kernel. On this node it can only ever observe the
// homogeneous-return case or failure; a heterogeneous success means the
// kernel has already handed the CPU to the destination node and this
// call never returns.
func (LinuxKernel) Migrate(nid int32, dst *arch.RegSet) error {
	if SyscallMigrate == 0 {
		return fmt.Errorf("kernel: SyscallMigrate is not configured")
	}
	_, _, errno := unix.RawSyscall(SyscallMigrate,
		uintptr(nid),
		uintptr(unsafe.Pointer(dst)),
		0)
	if errno != 0 {
		return fmt.Errorf("kernel: MIGRATE syscall failed: %w", errno)
	}
	return nil
}
