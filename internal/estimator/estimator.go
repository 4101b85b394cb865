package estimator

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"pulse-rate-monitor/internal/signal"
)

const (
	// MinSamples is the minimum session sample count for any estimate.
	MinSamples = 15
	// MinConditioned is the minimum smoothed length for peak counting.
	MinConditioned = 10
)

// Method identifies which estimation path produced the BPM.
type Method string

const (
	// MethodPeakCount counts local maxima over the capture window.
	MethodPeakCount Method = "peak_count"
	// MethodPeriodicity derives the rate from the dominant autocorrelation lag.
	MethodPeriodicity Method = "periodicity"
)

// Quality tiers a result by how much data backed it.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Result is the immutable outcome of one completed session.
type Result struct {
	BPM         int
	Method      Method
	Quality     Quality
	PeakCount   int
	SampleCount int
}

// InsufficientDataError reports a session that ended with too few samples to
// estimate anything. Recoverable: the caller retries with a fresh session.
type InsufficientDataError struct {
	Collected int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("estimator: insufficient data: %d samples collected, need at least %d", e.Collected, MinSamples)
}

// Options tune the estimation pipeline. Zero fields fall back to the
// reference defaults.
type Options struct {
	SamplingRateHz    float64
	ThresholdFraction float64 // peak threshold as a fraction of signal stddev
	RefractorySamples int     // minimum sample spacing between accepted peaks
	MinPeaks          int     // below this, defer to the periodicity fallback
	BPMMin            int
	BPMMax            int
	DefaultBPM        int // emitted when the autocorrelation search degenerates
}

// Estimator turns a session's raw sample values into a clamped BPM estimate.
type Estimator struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs an Estimator, applying reference defaults to unset options.
func New(opts Options, logger zerolog.Logger) *Estimator {
	if opts.SamplingRateHz <= 0 {
		opts.SamplingRateHz = 10
	}
	if opts.ThresholdFraction <= 0 {
		opts.ThresholdFraction = 0.3
	}
	if opts.RefractorySamples <= 0 {
		opts.RefractorySamples = 6
	}
	if opts.MinPeaks <= 0 {
		opts.MinPeaks = 3
	}
	if opts.BPMMin <= 0 {
		opts.BPMMin = 40
	}
	if opts.BPMMax <= 0 {
		opts.BPMMax = 200
	}
	if opts.DefaultBPM <= 0 {
		opts.DefaultBPM = 70
	}
	return &Estimator{opts: opts, logger: logger.With().Str("component", "estimator").Logger()}
}

// Estimate runs the full pipeline: conditioning, peak counting, and the
// periodicity fallback. It returns *InsufficientDataError when fewer than
// MinSamples values were collected; every other path yields a Result with
// the BPM clamped to [BPMMin, BPMMax].
func (e *Estimator) Estimate(values []float64) (Result, error) {
	if len(values) < MinSamples {
		return Result{}, &InsufficientDataError{Collected: len(values)}
	}

	smoothed := signal.Condition(values)
	if len(smoothed) < MinConditioned {
		// Unreachable for MinSamples-sized input given the radius cap, but
		// the smoothed sequence must never reach the detectors this short.
		return Result{}, &InsufficientDataError{Collected: len(values)}
	}

	quality := classifyQuality(len(values))

	bpm, peaks := e.countPeaks(smoothed)
	method := MethodPeakCount
	if peaks < e.opts.MinPeaks {
		method = MethodPeriodicity
		var degenerate bool
		bpm, degenerate = e.dominantPeriodBPM(smoothed)
		if degenerate {
			quality = QualityLow
		}
	}

	result := Result{
		BPM:         e.clamp(bpm),
		Method:      method,
		Quality:     quality,
		PeakCount:   peaks,
		SampleCount: len(values),
	}

	e.logger.Debug().
		Int("bpm", result.BPM).
		Str("method", string(result.Method)).
		Str("quality", string(result.Quality)).
		Int("peaks", result.PeakCount).
		Int("samples", result.SampleCount).
		Msg("estimate computed")

	return result, nil
}

// countPeaks scans the smoothed sequence for local maxima above the
// noise-derived threshold and converts the accepted count to BPM.
func (e *Estimator) countPeaks(s []float64) (bpm, peaks int) {
	m := len(s)

	// Population stddev assuming zero mean; the sequence is mean-subtracted
	// upstream, so this is the RMS.
	var sumSq float64
	for _, v := range s {
		sumSq += v * v
	}
	threshold := math.Sqrt(sumSq/float64(m)) * e.opts.ThresholdFraction

	lastPeak := -e.opts.RefractorySamples
	for i := 2; i < m-2; i++ {
		if s[i] <= threshold {
			continue
		}
		if s[i] <= s[i-1] || s[i] <= s[i+1] || s[i] <= s[i-2] || s[i] <= s[i+2] {
			continue
		}
		if i-lastPeak < e.opts.RefractorySamples {
			continue
		}
		peaks++
		lastPeak = i
	}

	windowSeconds := float64(m) / e.opts.SamplingRateHz
	bpm = int(math.Round(float64(peaks) / windowSeconds * 60))
	return bpm, peaks
}

// dominantPeriodBPM estimates the rate from the lag maximising the
// unnormalized autocorrelation. Lags below 0.3s of period (>200 BPM) and
// above 2s (<30 BPM) are outside the band of interest. A search that yields
// no positive score falls back to DefaultBPM and reports degenerate=true.
func (e *Estimator) dominantPeriodBPM(s []float64) (bpm int, degenerate bool) {
	m := len(s)
	r := e.opts.SamplingRateHz

	maxLag := m / 2
	if limit := int(r) * 2; limit < maxLag {
		maxLag = limit
	}
	minLag := int(r * 0.3)

	bestLag := 0
	bestScore := 0.0
	for lag := minLag; lag < maxLag; lag++ {
		if lag <= 0 {
			continue
		}
		var score float64
		for i := 0; i+lag < m; i++ {
			score += s[i] * s[i+lag]
		}
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == 0 {
		e.logger.Debug().Msg("autocorrelation degenerate; using default bpm")
		return e.opts.DefaultBPM, true
	}
	return int(math.Round(60 * r / float64(bestLag))), false
}

// clamp bounds a raw estimate to the physiological band.
func (e *Estimator) clamp(bpm int) int {
	if bpm < e.opts.BPMMin {
		return e.opts.BPMMin
	}
	if bpm > e.opts.BPMMax {
		return e.opts.BPMMax
	}
	return bpm
}

func classifyQuality(sampleCount int) Quality {
	switch {
	case sampleCount >= 100:
		return QualityHigh
	case sampleCount >= 50:
		return QualityMedium
	default:
		return QualityLow
	}
}
