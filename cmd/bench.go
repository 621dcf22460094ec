// cmd/bench.go
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bsc-mem/mess-simulator/memctrl"
)

const (
	benchOuterLoopSize = 1200000
	benchInnerLoopSize = 10
)

var (
	benchConfigPath string
	benchPause      int64
	benchWrite      bool
)

// benchCmd drives a single BwLatMemCtrl with a fixed inter-access pause,
// reporting the induced latency and bandwidth at the end of the run. It is
// the Go counterpart of original_source/Standalone/src/example.cpp's
// pause-controlled access loop: an outer loop advances the simulated clock by
// pause cycles, an inner loop issues benchInnerLoopSize accesses per tick, and
// bandwidth is derived from how many bytes moved per cycle of wall-clock
// advance.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Drive one memory channel at a fixed access rate and report induced latency/bandwidth",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadChannelConfig(benchConfigPath)
		if err != nil {
			logrus.Fatalf("bench: %v", err)
		}
		if benchPause < 0 {
			logrus.Fatalf("bench: --pause must be >= 0, got %d", benchPause)
		}

		ctrl, err := memctrl.New(cfg.toMemctrlConfig())
		if err != nil {
			logrus.Fatalf("bench: %v", err)
		}

		var cycle int64
		var latency int64
		for i := 0; i < benchOuterLoopSize; i++ {
			for j := 0; j < benchInnerLoopSize; j++ {
				latency, err = ctrl.Access(cycle, benchWrite)
				if err != nil {
					logrus.Fatalf("bench: access at cycle %d: %v", cycle, err)
				}
			}
			cycle += benchPause
		}

		if benchPause != 0 {
			ns := float64(latency) / cfg.CPUFrequencyGHz
			gbPerSec := benchInnerLoopSize * cfg.CPUFrequencyGHz * 64 / float64(benchPause)
			fmt.Printf("%.2f ns, %.2f GB/s\n", ns, gbPerSec)
		} else {
			fmt.Printf("%d cycles (pause=0: bandwidth undefined)\n", latency)
		}
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchConfigPath, "config", "", "Path to a channel config YAML file (required)")
	benchCmd.Flags().Int64Var(&benchPause, "pause", 0, "Cycles to pause between batches of accesses; controls induced bandwidth")
	benchCmd.Flags().BoolVar(&benchWrite, "write", false, "Issue writes instead of reads")
	_ = benchCmd.MarkFlagRequired("config")
}
