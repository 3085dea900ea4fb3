package treediff

import "github.com/rs/zerolog"

// Option configures a [Differ].
type Option func(*Differ)

// WithMaxDepth makes every pass fail with [ErrTooDeep] instead of recursing
// past [depth] levels. Zero (the default) means unbounded.
func WithMaxDepth(depth int) Option {
	return func(d *Differ) {
		d.maxDepth = depth
	}
}

// WithParallel runs the deletion, addition and update passes concurrently.
// The result order is the same as for a sequential run.
func WithParallel(parallel bool) Option {
	return func(d *Differ) {
		d.parallel = parallel
	}
}

// WithLogger sets the logger used for debug output. The default discards
// everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Differ) {
		d.logger = logger
	}
}
