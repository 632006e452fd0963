package executor

import "go.uber.org/zap"

type Option func(*Executor)

// WithLogger sets the logger used by the executor and its workers.
// Defaults to the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}
