package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"pulse-rate-monitor/internal/app"
)

var (
	measureRateBPM float64
	measureDemo    bool
	measureNoStore bool
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Run one timed measurement session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if measureRateBPM < 0 {
			return errors.New("--rate-bpm cannot be negative")
		}

		opts := app.MeasureOptions{
			RateBPM: measureRateBPM,
			Demo:    measureDemo,
			NoStore: measureNoStore,
		}

		return getApp().Measure(cmd.Context(), opts)
	},
}

func init() {
	measureCmd.Flags().Float64Var(&measureRateBPM, "rate-bpm", 0, "Simulated pulse rate (defaults to config)")
	measureCmd.Flags().BoolVar(&measureDemo, "demo", false, "Use the reference demo waveform")
	measureCmd.Flags().BoolVar(&measureNoStore, "no-store", false, "Skip persisting the result")
}
