package signal

import (
	"errors"
	"time"
)

// ErrNonMonotonic indicates an append whose timestamp precedes the last
// stored sample. Such samples are dropped and counted, never reordered.
var ErrNonMonotonic = errors.New("signal: sample timestamp precedes last stored sample")

// Sample is one timestamped brightness reading from the capture source.
// The value is an intensity proxy in arbitrary units; immutable once stored.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Buffer is the append-only sample store for a single measurement session.
// It is owned by exactly one session and is not safe for concurrent use.
type Buffer struct {
	samples []Sample
	dropped int
}

// NewBuffer constructs an empty sample buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append stores a sample. Timestamps must be monotonically non-decreasing;
// an out-of-order sample is rejected with ErrNonMonotonic and accounted via
// Dropped.
func (b *Buffer) Append(s Sample) error {
	if n := len(b.samples); n > 0 && s.Timestamp.Before(b.samples[n-1].Timestamp) {
		b.dropped++
		return ErrNonMonotonic
	}
	b.samples = append(b.samples, s)
	return nil
}

// Clear resets the buffer to its empty state, including the dropped counter.
func (b *Buffer) Clear() {
	b.samples = nil
	b.dropped = 0
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Dropped returns how many samples were rejected for violating the
// timestamp invariant.
func (b *Buffer) Dropped() int {
	return b.dropped
}

// Samples returns a copy of the stored samples in append order.
func (b *Buffer) Samples() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Values returns the stored brightness values in append order.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.samples))
	for i, s := range b.samples {
		out[i] = s.Value
	}
	return out
}
