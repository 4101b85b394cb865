package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"pulse-rate-monitor/internal/estimator"
	"pulse-rate-monitor/internal/signal"
)

// State enumerates the capture lifecycle.
type State int32

const (
	StateIdle State = iota
	StateAwaitingFinger
	StateMeasuring
	StateComputing
	StateComplete
	StateAborted
)

// String implements fmt.Stringer for progress display.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFinger:
		return "awaiting_finger"
	case StateMeasuring:
		return "measuring"
	case StateComputing:
		return "computing"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrAborted is returned when a session was cancelled before completing.
// No partial result is ever produced for an aborted session.
var ErrAborted = errors.New("session: aborted")

// Config tunes the timed capture window.
type Config struct {
	SamplingRateHz    float64
	RequiredDuration  time.Duration
	FingerDetectDelay time.Duration
}

// Session drives one measurement attempt: the finger-detection delay, the
// fixed-duration sampling window, and the synchronous estimation pass. A
// Session owns its buffer and at most one active timer, runs once, and is
// then discarded.
type Session struct {
	cfg    Config
	source signal.Source
	est    *estimator.Estimator
	logger zerolog.Logger

	state     atomic.Int32
	buffer    *signal.Buffer
	startedAt time.Time
}

// New constructs a Session instance.
func New(cfg Config, source signal.Source, est *estimator.Estimator, logger zerolog.Logger) *Session {
	if cfg.SamplingRateHz <= 0 {
		panic("session sampling rate must be positive")
	}
	if cfg.RequiredDuration <= 0 {
		panic("session required duration must be positive")
	}
	return &Session{
		cfg:    cfg,
		source: source,
		est:    est,
		logger: logger.With().Str("component", "session").Logger(),
		buffer: signal.NewBuffer(),
	}
}

// State reports the current lifecycle state. Safe for concurrent reads while
// Run is in flight.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run blocks until the session reaches a terminal state. Cancelling ctx
// aborts the session cooperatively: the request is observed at the next
// timer event, buffered samples are discarded, and ErrAborted is returned.
// A session that completed with fewer than the minimum sample count returns
// *estimator.InsufficientDataError; callers retry by starting a new session.
func (s *Session) Run(ctx context.Context) (estimator.Result, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateAwaitingFinger)) {
		return estimator.Result{}, errors.New("session: already run")
	}

	s.buffer.Clear()
	s.startedAt = time.Now()
	s.logger.Info().
		Dur("finger_detect_delay", s.cfg.FingerDetectDelay).
		Msg("session started; awaiting finger")

	// Fixed-timeout finger detection: no signal analysis, just a delay.
	delay := time.NewTimer(s.cfg.FingerDetectDelay)
	select {
	case <-ctx.Done():
		delay.Stop()
		return s.abort(ctx.Err())
	case <-delay.C:
	}

	s.setState(StateMeasuring)
	interval := time.Duration(float64(time.Second) / s.cfg.SamplingRateHz)
	measureStart := time.Now()
	s.logger.Info().
		Dur("interval", interval).
		Dur("required_duration", s.cfg.RequiredDuration).
		Msg("measuring")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.abort(ctx.Err())
		case now := <-ticker.C:
			value, err := s.source.Next(ctx)
			if err != nil {
				return s.abort(fmt.Errorf("read sample: %w", err))
			}
			// Late ticks keep their actual timestamp; the estimator works
			// in elapsed time, not idealized sample slots.
			if err := s.buffer.Append(signal.Sample{Timestamp: now, Value: value}); err != nil {
				s.logger.Warn().Err(err).Msg("sample rejected")
			}
			if now.Sub(measureStart) >= s.cfg.RequiredDuration {
				return s.compute()
			}
		}
	}
}

func (s *Session) compute() (estimator.Result, error) {
	s.setState(StateComputing)

	count := s.buffer.Len()
	if dropped := s.buffer.Dropped(); dropped > 0 {
		s.logger.Warn().Int("dropped", dropped).Msg("session saw non-monotonic samples")
	}

	result, err := s.est.Estimate(s.buffer.Values())
	s.setState(StateComplete)
	if err != nil {
		var insufficient *estimator.InsufficientDataError
		if errors.As(err, &insufficient) {
			s.logger.Warn().Int("collected", insufficient.Collected).Msg("session ended with insufficient data")
		}
		return estimator.Result{}, err
	}

	s.logger.Info().
		Int("bpm", result.BPM).
		Str("method", string(result.Method)).
		Str("quality", string(result.Quality)).
		Int("samples", count).
		Msg("session complete")
	return result, nil
}

func (s *Session) abort(cause error) (estimator.Result, error) {
	s.setState(StateAborted)
	s.buffer.Clear()
	s.logger.Info().AnErr("cause", cause).Msg("session aborted")
	if cause == nil || errors.Is(cause, context.Canceled) {
		return estimator.Result{}, ErrAborted
	}
	return estimator.Result{}, fmt.Errorf("%w: %v", ErrAborted, cause)
}

func (s *Session) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	s.logger.Debug().Stringer("from", prev).Stringer("to", next).Msg("state transition")
}

// StartedAt reports when the session was started.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Dropped reports how many samples were rejected for violating the buffer's
// timestamp invariant. Only meaningful after Run has returned.
func (s *Session) Dropped() int {
	return s.buffer.Dropped()
}
