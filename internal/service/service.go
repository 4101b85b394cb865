package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pulse-rate-monitor/internal/config"
	"pulse-rate-monitor/internal/estimator"
	"pulse-rate-monitor/internal/session"
	"pulse-rate-monitor/internal/signal"
	"pulse-rate-monitor/internal/storage"
)

// Service orchestrates measurement sessions and persistence of their results.
type Service struct {
	monitor *session.Monitor
	store   storage.MeasurementStore
	logger  zerolog.Logger
}

// New constructs the measurement service. The store may be nil, in which case
// results are delivered to the caller only.
func New(cfg *config.Config, store storage.MeasurementStore, logger zerolog.Logger) *Service {
	est := estimator.New(estimator.Options{
		SamplingRateHz:    cfg.Capture.SamplingRateHz,
		ThresholdFraction: cfg.Estimator.ThresholdFraction,
		RefractorySamples: cfg.Estimator.RefractorySamples,
		MinPeaks:          cfg.Estimator.MinPeaks,
		BPMMin:            cfg.Estimator.BPMMin,
		BPMMax:            cfg.Estimator.BPMMax,
		DefaultBPM:        cfg.Estimator.DefaultBPM,
	}, logger)

	monitor := session.NewMonitor(session.Config{
		SamplingRateHz:    cfg.Capture.SamplingRateHz,
		RequiredDuration:  cfg.Capture.RequiredDuration,
		FingerDetectDelay: cfg.Capture.FingerDetectDelay,
	}, est, logger)

	return &Service{
		monitor: monitor,
		store:   store,
		logger:  logger.With().Str("component", "service").Logger(),
	}
}

// Measure runs one full timed capture session against the source and returns
// the estimation result. A completed result is persisted when a store is
// configured; persistence failures are logged, not fatal, since the result
// has already been produced.
func (s *Service) Measure(ctx context.Context, source signal.Source) (estimator.Result, error) {
	outcome := <-s.monitor.Start(ctx, source)
	if outcome.Err != nil {
		var insufficient *estimator.InsufficientDataError
		switch {
		case errors.As(outcome.Err, &insufficient):
			s.logger.Warn().Int("collected", insufficient.Collected).Msg("measurement yielded insufficient data; retry with a new session")
		case errors.Is(outcome.Err, session.ErrAborted):
			s.logger.Info().Msg("measurement aborted")
		}
		return estimator.Result{}, outcome.Err
	}

	finishedAt := time.Now().UTC()
	if s.store != nil {
		record := storage.Measurement{
			StartedAt:    outcome.StartedAt.UTC(),
			FinishedAt:   finishedAt,
			BPM:          outcome.Result.BPM,
			Method:       string(outcome.Result.Method),
			Quality:      string(outcome.Result.Quality),
			PeakCount:    outcome.Result.PeakCount,
			SampleCount:  outcome.Result.SampleCount,
			DroppedCount: outcome.Dropped,
		}
		if _, err := s.store.InsertMeasurement(ctx, record); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist measurement")
		}
	}

	return outcome.Result, nil
}

// Cancel aborts the in-flight session, if any.
func (s *Service) Cancel() {
	s.monitor.Cancel()
}

// State reports the active session state for progress display.
func (s *Service) State() session.State {
	return s.monitor.State()
}
