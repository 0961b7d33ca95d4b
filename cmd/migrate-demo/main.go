// Command migrate-demo drives a two-node migration entirely inside one
// process, using pkg/kernel.Fake in place of a real distributed kernel
// and pkg/rewrite.FakeEngine in place of the external stack-transform
// engine. It exists because spec.md places packaging out of scope
// (§1) but a complete repository still ships one runnable entry point,
// the same way the teacher ships runsc as a thin dispatcher over its
// sentry packages.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/talismancer/popcorn-migrate/internal/migratelog"
	"github.com/talismancer/popcorn-migrate/pkg/arch"
	"github.com/talismancer/popcorn-migrate/pkg/kernel"
	"github.com/talismancer/popcorn-migrate/pkg/rewrite"
	"github.com/talismancer/popcorn-migrate/pkg/shim"
	"github.com/talismancer/popcorn-migrate/pkg/topology"
)

var (
	destArch = flag.String("dest-arch", "", "architecture of the simulated destination node (aarch64, powerpc64, x86_64); defaults to this binary's own architecture")
	debug    = flag.Bool("debug", false, "enable debug-level logging")
)

func main() {
	flag.Parse()
	migratelog.SetDebug(*debug)

	dst := arch.Local
	if *destArch != "" {
		a, ok := parseArch(*destArch)
		if !ok {
			fmt.Fprintf(os.Stderr, "migrate-demo: unknown -dest-arch %q\n", *destArch)
			os.Exit(2)
		}
		dst = a
	}

	var nodes [kernel.MaxNodes]kernel.NodeInfo
	nodes[0] = kernel.NodeInfo{Available: true, Arch: arch.Local, Distance: 0}
	nodes[1] = kernel.NodeInfo{Available: true, Arch: dst, Distance: 1}

	fake := kernel.NewFake(0, nodes)

	topo := topology.New()
	if err := topo.Init(fake); err != nil {
		fmt.Fprintf(os.Stderr, "migrate-demo: topology init failed: %v\n", err)
		os.Exit(1)
	}

	rw := &rewrite.Adapter{
		Engine:     &rewrite.FakeEngine{},
		Trampoline: shim.TrampolineAddr,
	}
	sh := shim.New(topo, fake, rw)
	sh.Activate()

	fake.OnHeterogeneousResume = func(*arch.RegSet) {
		sh.Reenter()
	}

	fmt.Printf("migrate-demo: node 0 is %s, node 1 is %s\n", arch.Local, dst)
	fmt.Printf("migrate-demo: current_nid=%d current_arch=%s\n", topology.CurrentNid(fake), topo.CurrentArch(fake))

	sh.Migrate(1, func(data any) {
		fmt.Printf("migrate-demo: resumed on node %d (arch %s): %v\n",
			topology.CurrentNid(fake), topo.CurrentArch(fake), data)
	}, "hello from the other node")

	fmt.Println("migrate-demo: shim returned to caller")
}

func parseArch(s string) (arch.Arch, bool) {
	switch s {
	case "aarch64":
		return arch.AArch64, true
	case "powerpc64":
		return arch.POWERPC64, true
	case "x86_64":
		return arch.X86_64, true
	default:
		return arch.Unknown, false
	}
}
