package commands

import (
	"log/slog"
	"time"
)

// DefaultLockTimeout bounds the wait for another transition on the same order.
const DefaultLockTimeout = 5 * time.Second

// Option configures a command handler.
type Option func(*handlerOptions)

type handlerOptions struct {
	now         func() time.Time
	lockTimeout time.Duration
	logger      *slog.Logger
	observer    TransitionObserver
	uidRoot     string
}

// WithClock replaces the clock used for effective dates.
func WithClock(now func() time.Time) Option {
	return func(o *handlerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLockTimeout sets how long a handler waits for the per-order lock before
// giving up with a conflict.
func WithLockTimeout(d time.Duration) Option {
	return func(o *handlerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *handlerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for transition outcomes, typically metrics.
func WithObserver(observer TransitionObserver) Option {
	return func(o *handlerOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithStudyUIDRoot sets the DICOM root used when the worklist does not return a
// study instance UID of its own. Empty means the UUID-derived 2.25 root.
func WithStudyUIDRoot(root string) Option {
	return func(o *handlerOptions) {
		o.uidRoot = root
	}
}

func newHandlerOptions(component string, opts []Option) handlerOptions {
	o := handlerOptions{
		now:         func() time.Time { return time.Now().UTC() },
		lockTimeout: DefaultLockTimeout,
		logger:      slog.Default(),
		observer:    noopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}
