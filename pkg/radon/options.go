package radon

import "context"

// ProgressFunc is called with the zero-based index of the angle just completed.
// Calls happen in increasing angle order, exactly once per angle, before the
// operation returns.
type ProgressFunc func(angle int)

// Option configures Project and Reconstruct.
type Option func(*options)

type options struct {
	ctx      context.Context
	progress ProgressFunc
	workers  int
}

func newOptions(opts []Option) *options {
	o := &options{
		ctx:     context.Background(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithProgress installs a per-angle progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithContext makes the operation stop with ctx.Err() when ctx is cancelled.
// Cancellation is observed between angles only, never in the middle of one.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithWorkers sets how many angles Project may compute concurrently.
// Reconstruct ignores it since each frame depends on the previous one.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func (o *options) report(angle int) {
	if o.progress != nil {
		o.progress(angle)
	}
}
