package closer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

type namedCloser struct {
	name string
	fn   func(ctx context.Context) error
}

type closer struct {
	mu      sync.Mutex
	closers []namedCloser
	logger  Logger
}

var global = &closer{}

func SetLogger(logger Logger) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.logger = logger
}

// AddNamed registers a shutdown hook. Hooks run in reverse registration order.
func AddNamed(name string, fn func(ctx context.Context) error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.closers = append(global.closers, namedCloser{name: name, fn: fn})
}

// CloseAll runs every registered hook and returns the first error encountered.
func CloseAll(ctx context.Context) error {
	global.mu.Lock()
	closers := make([]namedCloser, len(global.closers))
	copy(closers, global.closers)
	global.closers = nil
	logger := global.logger
	global.mu.Unlock()

	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			if logger != nil {
				logger.Error(ctx, "failed to close", zap.String("closer", c.name), zap.Error(err))
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if logger != nil {
			logger.Info(ctx, "closed", zap.String("closer", c.name))
		}
	}

	return firstErr
}
