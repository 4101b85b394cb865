package app

import (
	"context"
	"fmt"

	"pulse-rate-monitor/internal/estimator"
)

// Simulate 跳过定时采集窗口，直接对合成信号做一次离线估计。
// Useful for tuning detector parameters without waiting out a session.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	rate := a.Config.Capture.SamplingRateHz
	count := int(rate * a.Config.Capture.RequiredDuration.Seconds())

	source := a.newSource(opts.RateBPM, opts.Demo)
	values := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		v, err := source.Next(ctx)
		if err != nil {
			return fmt.Errorf("generate sample: %w", err)
		}
		values = append(values, v)
	}

	est := estimator.New(estimator.Options{
		SamplingRateHz:    rate,
		ThresholdFraction: a.Config.Estimator.ThresholdFraction,
		RefractorySamples: a.Config.Estimator.RefractorySamples,
		MinPeaks:          a.Config.Estimator.MinPeaks,
		BPMMin:            a.Config.Estimator.BPMMin,
		BPMMax:            a.Config.Estimator.BPMMax,
		DefaultBPM:        a.Config.Estimator.DefaultBPM,
	}, a.Logger)

	result, err := est.Estimate(values)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Int("samples", len(values)).
		Int("bpm", result.BPM).
		Str("method", string(result.Method)).
		Msg("模拟估计完成")

	printResult(result)
	return nil
}
