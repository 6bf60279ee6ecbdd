package sync

import "time"

// Defaults for the batch controller. Small batch and generous pacing keep
// the backend's rate limiter quiet; operators raise them deliberately.
const (
	DefaultBatchSize = 5
	DefaultDelay     = 2 * time.Second
)

// Options controls one sync run.
type Options struct {
	// BatchSize caps how many eligible records are processed before the
	// run stops and checkpoints. Zero or negative means the default.
	BatchSize int

	// Delay is the pause between records. Applied between records only,
	// never mid-record.
	Delay time.Duration

	// Manual bypasses the modified-since-last-sync eligibility check and
	// starts from StartRow. Used for operator-driven resumption.
	Manual bool

	// StartRow is the 1-based source row to start from in manual mode.
	// Zero means the first data row.
	StartRow int
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the standard scheduled-run configuration.
func DefaultOptions() *Options {
	return &Options{
		BatchSize: DefaultBatchSize,
		Delay:     DefaultDelay,
	}
}

// Apply folds the given options into o and normalizes the result.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

// WithBatchSize sets the processed-record cap for the run.
func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

// WithDelay sets the inter-record pause.
func WithDelay(d time.Duration) Option {
	return func(o *Options) { o.Delay = d }
}

// WithManualStart enables manual mode starting at the given source row.
func WithManualStart(row int) Option {
	return func(o *Options) {
		o.Manual = true
		o.StartRow = row
	}
}
