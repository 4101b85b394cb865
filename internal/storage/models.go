package storage

import "time"

// Measurement is one persisted completed session.
type Measurement struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	BPM          int
	Method       string
	Quality      string
	PeakCount    int
	SampleCount  int
	DroppedCount int
	CreatedAt    time.Time
}
