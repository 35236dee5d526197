// Command rdmreport runs an RDM mirror network simulation headlessly
// to its configured sim_time and prints a final human-readable report,
// the same "headless diagnostic binary beside the server binary" shape
// as the teacher's diagnostic tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/config"
	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/effector"
	"github.com/mirrorlab/rdmsim/internal/probes"
	"github.com/mirrorlab/rdmsim/internal/simulation"
	"github.com/mirrorlab/rdmsim/internal/topology"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to config file")
	strategyName := flag.String("strategy", "fully-connected", "Initial topology strategy")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	cfg, err := config.Load(logger, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	strategy, err := topology.New(*strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid topology strategy: %v\n", err)
		return 1
	}

	network := core.NewNetwork(cfg, strategy, logger)
	mirrorProbe := probes.NewMirrorProbe()
	linkProbe := probes.NewLinkProbe()
	network.RegisterProbe(mirrorProbe)
	network.RegisterProbe(linkProbe)
	network.Effector = effector.NewScheduler(logger)

	if err := network.Bootstrap(0); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		return 1
	}

	driver := simulation.NewDriver(network, logger)
	reached, err := driver.Run(context.Background(), cfg.SimTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation aborted at tick %d: %v\n", reached, err)
		return 1
	}

	printReport(reached, network, mirrorProbe, linkProbe, strategy.Kind().String())
	return 0
}

func printReport(tick int64, n *core.Network, mp *probes.MirrorProbe, lp *probes.LinkProbe, strategyName string) {
	mirror := mp.Report(tick).(probes.MirrorReport)
	link := lp.Report(tick).(probes.LinkReport)

	var totalBytes int64
	for _, b := range n.BandwidthHistory {
		totalBytes += b
	}

	fmt.Printf("RDM simulation report (strategy=%s, ticks=%d)\n", strategyName, tick)
	fmt.Printf("  mirrors: starting=%d up=%d ready=%d has_data=%d stopping=%d (target=%d, ready_ratio=%.2f)\n",
		mirror.Counts.Starting, mirror.Counts.Up, mirror.Counts.Ready, mirror.Counts.HasData, mirror.Counts.Stopping,
		mirror.Target, mirror.ReadyRatio)
	fmt.Printf("  links: active=%d inactive=%d (target=%d, active_ratio=%.2f)\n",
		link.Active, link.Inactive, link.Target, link.ActiveRatio)
	fmt.Printf("  total bandwidth delivered: %s (%s)\n", humanize.Bytes(uint64(totalBytes)), humanize.Comma(totalBytes))
}
