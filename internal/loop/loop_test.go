package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, ev any) error {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) snapshot() []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]any(nil), h.events...)
}

func TestNew_RequiresHandler(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrHandlerRequired) {
		t.Errorf("New(Config{}) err = %v, want %v", err, ErrHandlerRequired)
	}
}

func TestLoop_SubmitBeforeStart(t *testing.T) {
	l, err := New(Config{Handler: &recordingHandler{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Submit(context.Background(), "ev"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Submit before Start = %v, want %v", err, ErrNotStarted)
	}
}

func TestLoop_DoubleStart(t *testing.T) {
	l, err := New(Config{Handler: &recordingHandler{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want %v", err, ErrAlreadyStarted)
	}
}

func TestLoop_DeliversInOrder(t *testing.T) {
	h := &recordingHandler{}
	l, err := New(Config{Handler: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := l.Submit(ctx, i); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
	}
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	events := h.snapshot()
	if len(events) != 10 {
		t.Fatalf("handled %d events, want 10", len(events))
	}
	for i, ev := range events {
		if ev != i {
			t.Errorf("events[%d] = %v, want %d", i, ev, i)
		}
	}
}

func TestLoop_HandlerErrorDoesNotStopLoop(t *testing.T) {
	h := &recordingHandler{err: errors.New("boom")}
	l, err := New(Config{Handler: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := l.Submit(ctx, i); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
	}
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := len(h.snapshot()); got != 3 {
		t.Errorf("handled %d events, want 3", got)
	}
}

func TestLoop_SubmitAfterStop(t *testing.T) {
	l, err := New(Config{Handler: &recordingHandler{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := l.Submit(ctx, "late"); !errors.Is(err, ErrStopped) {
		t.Errorf("Submit after Stop = %v, want %v", err, ErrStopped)
	}
	if err := l.Stop(ctx); !errors.Is(err, ErrStopped) {
		t.Errorf("second Stop = %v, want %v", err, ErrStopped)
	}
}

func TestLoop_ContextCancelShutsDown(t *testing.T) {
	h := &recordingHandler{}
	l, err := New(Config{Handler: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	// The loop goroutine must exit on its own once the context dies;
	// Stop then returns without waiting.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := l.Stop(stopCtx); err != nil {
		t.Errorf("Stop after context cancel = %v, want nil", err)
	}
}
