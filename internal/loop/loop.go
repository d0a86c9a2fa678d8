// Package loop provides a single-goroutine event queue. Everything that
// mutates the game state is funneled through one Loop, which is the entire
// concurrency discipline of the registry: one event is handled to completion
// before the next is dequeued.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// Handler processes events submitted to the loop.
type Handler interface {
	Handle(ctx context.Context, ev any) error
}

// Config controls the behaviour of the loop.
type Config struct {
	Handler   Handler
	QueueSize int
	Logger    *slog.Logger
}

// Loop delivers submitted events to the handler on a single goroutine.
type Loop struct {
	handler Handler
	queue   chan any
	logger  *slog.Logger

	started atomic.Bool
	stopped atomic.Bool

	done chan struct{}
}

var (
	ErrHandlerRequired = errors.New("loop: handler is required")
	ErrNotStarted      = errors.New("loop: not started")
	ErrStopped         = errors.New("loop: stopped")
	ErrAlreadyStarted  = errors.New("loop: start called multiple times")
)

// New creates a Loop with the supplied configuration.
func New(cfg Config) (*Loop, error) {
	if cfg.Handler == nil {
		return nil, ErrHandlerRequired
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		handler: cfg.Handler,
		queue:   make(chan any, queueSize),
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start launches the loop goroutine. It must be called once.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop: context cancelled, shutting down", "err", ctx.Err())
			return
		case ev, ok := <-l.queue:
			if !ok {
				return
			}
			if err := l.handler.Handle(ctx, ev); err != nil {
				l.logger.Warn("loop: handler error", "err", err)
			}
		}
	}
}

// Submit enqueues an event to be processed by the loop.
func (l *Loop) Submit(ctx context.Context, ev any) error {
	if !l.started.Load() {
		return ErrNotStarted
	}
	if l.stopped.Load() {
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- ev:
		return nil
	}
}

// Stop drains the queue and waits for the loop goroutine to finish.
func (l *Loop) Stop(ctx context.Context) error {
	if !l.stopped.CompareAndSwap(false, true) {
		return ErrStopped
	}
	close(l.queue)
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
