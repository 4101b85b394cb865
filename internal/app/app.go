package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pulse-rate-monitor/internal/config"
	"pulse-rate-monitor/internal/signal"
	"pulse-rate-monitor/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// newSource builds the brightness source for a session. Camera capture is
// the surrounding application's concern; the bundled sources are synthetic.
func (a *App) newSource(rateBPM float64, demo bool) signal.Source {
	if demo {
		return signal.NewDemoSource(a.Config.Capture.SamplingRateHz, a.Config.Simulate.Seed)
	}

	if rateBPM <= 0 {
		rateBPM = a.Config.Simulate.RateBPM
	}
	return signal.NewPulseSource(signal.PulseOptions{
		SampleRateHz:   a.Config.Capture.SamplingRateHz,
		RateBPM:        rateBPM,
		BaseLevel:      a.Config.Simulate.BaseLevel,
		Amplitude:      a.Config.Simulate.Amplitude,
		NoiseAmplitude: a.Config.Simulate.NoiseAmplitude,
		Seed:           a.Config.Simulate.Seed,
	})
}

// MeasureOptions configure a single timed measurement run.
type MeasureOptions struct {
	RateBPM float64 // simulated pulse rate; 0 uses the configured default
	Demo    bool    // use the reference demo waveform instead
	NoStore bool    // skip persistence even when a database is configured
}

// SimulateOptions configure an offline estimation pass.
type SimulateOptions struct {
	RateBPM float64
	Demo    bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ExportOptions hold parameters for exporting measurement history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}
