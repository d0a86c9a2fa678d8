// Package track is the boundary to the hand-tracking provider. The
// provider, whatever it is, keeps writing its newest landmark frame into a
// Store; only the most recent frame ever matters.
package track

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// LandmarkCount is the number of points per detected hand (MediaPipe hand
// model layout).
const LandmarkCount = 21

// Point is one landmark in normalized [0,1] image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is the ordered landmark set of one detected hand.
type Hand []Point

// Frame is everything the tracker saw in one capture cycle. An empty frame
// means no hands detected.
type Frame struct {
	Hands []Hand `json:"hands"`
}

// Source is what the outcome evaluator reads from.
type Source interface {
	Latest() Frame
}

// Store is a single most-recent-frame slot. The provider callback writes,
// the render tick reads; staleness of one provider cycle is expected since
// tracking and rendering frequencies are not synchronized.
type Store struct {
	mu    sync.RWMutex
	frame Frame
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Put(frame Frame) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

func (s *Store) Latest() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// FeedReader consumes newline-delimited JSON frames from a tracking
// sidecar and keeps the store current. A dead or garbled feed degrades to
// "no hands" (the last good frame, eventually swept by an empty one), never
// to a crash.
type FeedReader struct {
	r     io.Reader
	store *Store
}

func NewFeedReader(r io.Reader, store *Store) *FeedReader {
	return &FeedReader{r: r, store: store}
}

func (f *FeedReader) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(f.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			slog.WarnContext(ctx, "skipping malformed tracking frame", "err", err)
			continue
		}
		f.store.Put(frame)
	}
	if err := scanner.Err(); err != nil {
		slog.WarnContext(ctx, "tracking feed closed", "err", err)
		f.store.Put(Frame{})
		return err
	}
	f.store.Put(Frame{})
	return nil
}
