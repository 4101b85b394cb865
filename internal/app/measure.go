package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	osignal "os/signal"
	"syscall"

	"pulse-rate-monitor/internal/estimator"
	"pulse-rate-monitor/internal/service"
	"pulse-rate-monitor/internal/session"
	"pulse-rate-monitor/internal/storage"
)

// Measure runs one full timed capture session and prints the result.
// Interrupt aborts the session; no partial result is emitted.
func (a *App) Measure(ctx context.Context, opts MeasureOptions) error {
	ctx, cancel := osignal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var measurementStore storage.MeasurementStore
	if !opts.NoStore {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
		} else {
			measurementStore = store
		}
		if closeStore != nil {
			defer closeStore()
		}
	}

	svc := service.New(a.Config, measurementStore, a.Logger)
	source := a.newSource(opts.RateBPM, opts.Demo)

	a.Logger.Info().
		Float64("sampling_rate_hz", a.Config.Capture.SamplingRateHz).
		Dur("required_duration", a.Config.Capture.RequiredDuration).
		Msg("starting measurement")

	result, err := svc.Measure(ctx, source)
	if err != nil {
		var insufficient *estimator.InsufficientDataError
		if errors.As(err, &insufficient) {
			fmt.Fprintf(os.Stdout, "insufficient data: collected %d samples, need %d; place the finger fully over the lens and retry\n",
				insufficient.Collected, estimator.MinSamples)
			return nil
		}
		if errors.Is(err, session.ErrAborted) {
			fmt.Fprintln(os.Stdout, "measurement cancelled")
			return nil
		}
		return err
	}

	printResult(result)
	return nil
}

func printResult(result estimator.Result) {
	fmt.Fprintf(os.Stdout, "heart rate: %d bpm\nmethod: %s\nquality: %s\npeaks: %d\nsamples: %d\n",
		result.BPM, result.Method, result.Quality, result.PeakCount, result.SampleCount)
}
