package signal

import "context"

// Source yields successive brightness readings from a capture device.
// Implementations may block until a reading is available; they must honour
// context cancellation.
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// SourceFunc adapts a plain function into a Source.
type SourceFunc func(ctx context.Context) (float64, error)

// Next implements Source.
func (f SourceFunc) Next(ctx context.Context) (float64, error) {
	return f(ctx)
}
