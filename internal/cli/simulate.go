package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"pulse-rate-monitor/internal/app"
)

var (
	simulateRateBPM float64
	simulateDemo    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "对合成信号做一次离线 BPM 估计",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateRateBPM < 0 {
			return errors.New("--rate-bpm 不能为负")
		}

		opts := app.SimulateOptions{
			RateBPM: simulateRateBPM,
			Demo:    simulateDemo,
		}

		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateRateBPM, "rate-bpm", 0, "模拟脉搏频率 (默认取配置)")
	simulateCmd.Flags().BoolVar(&simulateDemo, "demo", false, "使用参考 demo 波形")
}
