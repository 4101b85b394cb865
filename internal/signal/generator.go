package signal

import (
	"context"
	"math"
	"math/rand"
)

// PulseOptions parameterise the synthetic pulse source.
type PulseOptions struct {
	SampleRateHz   float64
	RateBPM        float64
	BaseLevel      float64 // resting brightness level, arbitrary units
	Amplitude      float64 // pulse swing around the base level
	NoiseAmplitude float64 // uniform noise added on top
	Seed           int64
}

// PulseSource generates a pulse-shaped brightness waveform at a fixed BPM.
// It is deliberately simple: a sinusoid riding on a baseline plus uniform
// noise, which is enough to exercise the full estimation pipeline without a
// camera.
type PulseSource struct {
	opts  PulseOptions
	phase float64
	rng   *rand.Rand
}

// NewPulseSource constructs a synthetic pulse source.
func NewPulseSource(opts PulseOptions) *PulseSource {
	if opts.SampleRateHz <= 0 {
		opts.SampleRateHz = 10
	}
	if opts.RateBPM <= 0 {
		opts.RateBPM = 72
	}
	if opts.BaseLevel == 0 {
		opts.BaseLevel = 175
	}
	if opts.Amplitude == 0 {
		opts.Amplitude = 20
	}
	return &PulseSource{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

// Next returns the next brightness reading and advances the waveform phase.
func (p *PulseSource) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	beatHz := p.opts.RateBPM / 60.0
	p.phase += beatHz / p.opts.SampleRateHz
	if p.phase >= 1.0 {
		p.phase -= 1.0
	}

	value := p.opts.BaseLevel + p.opts.Amplitude*math.Sin(2*math.Pi*p.phase)
	if p.opts.NoiseAmplitude > 0 {
		value += (p.rng.Float64()*2 - 1) * p.opts.NoiseAmplitude
	}
	return value, nil
}

// DemoSource reproduces the reference demo waveform
// 150 + random*50 + 20*sin(t/100), with t advancing in milliseconds at the
// nominal sampling rate. Useful for end-to-end checks against the observed
// ~150-200 brightness range.
type DemoSource struct {
	sampleRateHz float64
	t            float64
	rng          *rand.Rand
}

// NewDemoSource constructs the demo waveform source.
func NewDemoSource(sampleRateHz float64, seed int64) *DemoSource {
	if sampleRateHz <= 0 {
		sampleRateHz = 10
	}
	return &DemoSource{
		sampleRateHz: sampleRateHz,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next demo reading.
func (d *DemoSource) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.t += 1000.0 / d.sampleRateHz
	return 150 + d.rng.Float64()*50 + 20*math.Sin(d.t/100), nil
}

var _ Source = (*PulseSource)(nil)
var _ Source = (*DemoSource)(nil)
