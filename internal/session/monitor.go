package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pulse-rate-monitor/internal/estimator"
	"pulse-rate-monitor/internal/signal"
)

// Outcome carries the terminal result of one measurement attempt.
type Outcome struct {
	Result    estimator.Result
	StartedAt time.Time
	Dropped   int
	Err       error
}

// Monitor enforces the single-session rule: exactly one session is active at
// a time, and starting a new one first aborts the old one (last-writer-wins).
type Monitor struct {
	cfg    Config
	est    *estimator.Estimator
	logger zerolog.Logger

	mu      sync.Mutex
	current *Session
	cancel  context.CancelFunc
}

// NewMonitor constructs a Monitor.
func NewMonitor(cfg Config, est *estimator.Estimator, logger zerolog.Logger) *Monitor {
	return &Monitor{cfg: cfg, est: est, logger: logger}
}

// Start begins a new measurement session against the given source, aborting
// any session already in flight. The returned channel receives exactly one
// Outcome when the new session reaches a terminal state.
func (m *Monitor) Start(ctx context.Context, source signal.Source) <-chan Outcome {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	sess := New(m.cfg, source, m.est, m.logger)
	m.current = sess
	m.cancel = cancel
	m.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		result, err := sess.Run(runCtx)
		cancel()
		out <- Outcome{
			Result:    result,
			StartedAt: sess.StartedAt(),
			Dropped:   sess.Dropped(),
			Err:       err,
		}
	}()
	return out
}

// Cancel aborts the active session, if any. The abort is cooperative and
// observed at the session's next timer event.
func (m *Monitor) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// State reports the active session's state, or StateIdle when no session has
// been started.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return StateIdle
	}
	return m.current.State()
}
