package estimator

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// sineSamples builds n samples of a pure sine at freqHz riding on a baseline,
// sampled at rateHz.
func sineSamples(n int, freqHz, rateHz, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / rateHz
		out[i] = 175 + amplitude*math.Sin(2*math.Pi*freqHz*t)
	}
	return out
}

func TestEstimateInsufficientData(t *testing.T) {
	e := New(Options{}, noopLogger())

	for _, n := range []int{0, 1, 14} {
		values := make([]float64, n)
		_, err := e.Estimate(values)

		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) {
			t.Fatalf("n=%d: expected InsufficientDataError, got %v", n, err)
		}
		if insufficient.Collected != n {
			t.Fatalf("n=%d: error should carry collected count, got %d", n, insufficient.Collected)
		}
	}
}

func TestEstimateSineByPeakCount(t *testing.T) {
	// 1.2 Hz = 72 BPM, 15s at 10 Hz, no noise.
	values := sineSamples(150, 1.2, 10, 20)

	e := New(Options{SamplingRateHz: 10}, noopLogger())
	result, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if result.Method != MethodPeakCount {
		t.Fatalf("clean sine should use the peak-count path, got %s", result.Method)
	}
	if result.BPM < 67 || result.BPM > 77 {
		t.Fatalf("expected BPM within ±5 of 72, got %d", result.BPM)
	}
	if result.Quality != QualityHigh {
		t.Fatalf("150 samples should tier high, got %s", result.Quality)
	}
	if result.SampleCount != 150 {
		t.Fatalf("sample count should be recorded, got %d", result.SampleCount)
	}
}

func TestEstimateFlatLineFallsBackToDefault(t *testing.T) {
	// Zero-amplitude signal: no peaks, degenerate autocorrelation.
	values := sineSamples(150, 1.2, 10, 0)

	e := New(Options{SamplingRateHz: 10}, noopLogger())
	result, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if result.PeakCount != 0 {
		t.Fatalf("flat line should have zero peaks, got %d", result.PeakCount)
	}
	if result.Method != MethodPeriodicity {
		t.Fatalf("expected periodicity fallback, got %s", result.Method)
	}
	if result.BPM != 70 {
		t.Fatalf("degenerate autocorrelation should yield the default 70, got %d", result.BPM)
	}
	if result.Quality != QualityLow {
		t.Fatalf("degenerate result must tier low regardless of sample count, got %s", result.Quality)
	}
}

func TestEstimatePeriodicityPath(t *testing.T) {
	// Force the fallback on a clean sine by demanding an unreachable peak
	// count; the dominant lag must still recover the rate.
	values := sineSamples(150, 1.2, 10, 20)

	e := New(Options{SamplingRateHz: 10, MinPeaks: 100}, noopLogger())
	result, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if result.Method != MethodPeriodicity {
		t.Fatalf("expected periodicity method, got %s", result.Method)
	}
	// 1.2 Hz has an 8.33-sample period at 10 Hz; lag 8 implies 75 BPM.
	if result.BPM < 67 || result.BPM > 80 {
		t.Fatalf("autocorrelation estimate off: got %d", result.BPM)
	}
	if result.Quality != QualityHigh {
		t.Fatalf("non-degenerate fallback keeps the count-based tier, got %s", result.Quality)
	}
}

func TestClamp(t *testing.T) {
	e := New(Options{}, noopLogger())

	cases := []struct {
		raw  int
		want int
	}{
		{250, 200},
		{201, 200},
		{200, 200},
		{120, 120},
		{40, 40},
		{39, 40},
		{10, 40},
	}
	for _, tc := range cases {
		if got := e.clamp(tc.raw); got != tc.want {
			t.Fatalf("clamp(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestQualityTiers(t *testing.T) {
	cases := []struct {
		count int
		want  Quality
	}{
		{100, QualityHigh},
		{99, QualityMedium},
		{50, QualityMedium},
		{49, QualityLow},
		{15, QualityLow},
	}
	for _, tc := range cases {
		if got := classifyQuality(tc.count); got != tc.want {
			t.Fatalf("classifyQuality(%d) = %s, want %s", tc.count, got, tc.want)
		}
	}
}

func TestQualityTiersThroughPipeline(t *testing.T) {
	e := New(Options{SamplingRateHz: 10}, noopLogger())

	cases := []struct {
		count int
		want  Quality
	}{
		{100, QualityHigh},
		{99, QualityMedium},
		{50, QualityMedium},
		{49, QualityLow},
	}
	for _, tc := range cases {
		values := sineSamples(tc.count, 1.2, 10, 20)
		result, err := e.Estimate(values)
		if err != nil {
			t.Fatalf("count=%d: estimate failed: %v", tc.count, err)
		}
		if result.Quality != tc.want {
			t.Fatalf("count=%d: quality %s, want %s", tc.count, result.Quality, tc.want)
		}
	}
}

func TestEstimateReferenceWaveform(t *testing.T) {
	// 15s at 10 Hz of the reference demo generator.
	rng := rand.New(rand.NewSource(99))
	values := make([]float64, 150)
	tMs := 0.0
	for i := range values {
		tMs += 100
		values[i] = 150 + rng.Float64()*50 + 20*math.Sin(tMs/100)
	}

	e := New(Options{SamplingRateHz: 10}, noopLogger())
	result, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if result.BPM < 40 || result.BPM > 200 {
		t.Fatalf("BPM must stay within the physiological band, got %d", result.BPM)
	}
	if result.Quality != QualityHigh {
		t.Fatalf("150 samples should tier high, got %s", result.Quality)
	}
	if result.Method != MethodPeakCount && result.Method != MethodPeriodicity {
		t.Fatalf("unexpected method %s", result.Method)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	values := sineSamples(150, 1.2, 10, 20)
	e := New(Options{SamplingRateHz: 10}, noopLogger())

	first, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	second, err := e.Estimate(values)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if first != second {
		t.Fatalf("identical input must produce identical results: %+v vs %+v", first, second)
	}
}

func TestDefaultsApplied(t *testing.T) {
	e := New(Options{}, noopLogger())

	if e.opts.SamplingRateHz != 10 || e.opts.ThresholdFraction != 0.3 ||
		e.opts.RefractorySamples != 6 || e.opts.MinPeaks != 3 ||
		e.opts.BPMMin != 40 || e.opts.BPMMax != 200 || e.opts.DefaultBPM != 70 {
		t.Fatalf("reference defaults not applied: %+v", e.opts)
	}
}
