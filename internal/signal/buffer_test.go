package signal

import (
	"errors"
	"testing"
	"time"
)

func TestBufferAppendKeepsOrder(t *testing.T) {
	b := NewBuffer()
	base := time.Now()

	for i := 0; i < 5; i++ {
		s := Sample{Timestamp: base.Add(time.Duration(i) * 100 * time.Millisecond), Value: float64(i)}
		if err := b.Append(s); err != nil {
			t.Fatalf("in-order append should not fail: %v", err)
		}
	}

	if b.Len() != 5 {
		t.Fatalf("expected 5 samples, got %d", b.Len())
	}
	if b.Dropped() != 0 {
		t.Fatalf("expected no dropped samples, got %d", b.Dropped())
	}

	values := b.Values()
	for i, v := range values {
		if v != float64(i) {
			t.Fatalf("values out of order at %d: %v", i, values)
		}
	}
}

func TestBufferRejectsNonMonotonic(t *testing.T) {
	b := NewBuffer()
	base := time.Now()

	if err := b.Append(Sample{Timestamp: base, Value: 1}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	err := b.Append(Sample{Timestamp: base.Add(-time.Second), Value: 2})
	if !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("expected ErrNonMonotonic, got %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("rejected sample must not be stored, len=%d", b.Len())
	}
	if b.Dropped() != 1 {
		t.Fatalf("dropped counter should be 1, got %d", b.Dropped())
	}

	// Equal timestamps are allowed (non-decreasing).
	if err := b.Append(Sample{Timestamp: base, Value: 3}); err != nil {
		t.Fatalf("equal timestamp append should succeed: %v", err)
	}
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer()
	base := time.Now()

	_ = b.Append(Sample{Timestamp: base, Value: 1})
	_ = b.Append(Sample{Timestamp: base.Add(-time.Second), Value: 2})

	b.Clear()
	if b.Len() != 0 || b.Dropped() != 0 {
		t.Fatalf("clear should reset everything, len=%d dropped=%d", b.Len(), b.Dropped())
	}
}

func TestBufferSamplesReturnsCopy(t *testing.T) {
	b := NewBuffer()
	_ = b.Append(Sample{Timestamp: time.Now(), Value: 1})

	samples := b.Samples()
	samples[0].Value = 99

	if b.Values()[0] != 1 {
		t.Fatal("mutating the returned slice must not affect the buffer")
	}
}
