// Package media downloads vehicle photos, runs them through an optimizer,
// and uploads them to the content backend, reusing attachment IDs already
// recorded against the source row so re-runs never duplicate uploads.
package media

import "context"

// Optimizer transforms image bytes before upload. Implementations may
// recompress, resize, or convert formats; the returned content type reflects
// the output encoding.
type Optimizer interface {
	Optimize(ctx context.Context, data []byte, contentType string) ([]byte, string, error)
}

// Passthrough is the default Optimizer. It uploads bytes exactly as fetched.
type Passthrough struct{}

func (Passthrough) Optimize(_ context.Context, data []byte, contentType string) ([]byte, string, error) {
	return data, contentType, nil
}
