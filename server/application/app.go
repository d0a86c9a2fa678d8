package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JoniJuntto/rantalentis/internal/loop"
	"github.com/JoniJuntto/rantalentis/server/domain"
)

// Config tunes the shot registry.
type Config struct {
	// ShotTTL is how long an unresolved shot may sit in the active set
	// before the sweep drops it. Zero disables the sweep.
	ShotTTL time.Duration
	// SweepInterval is how often the sweep runs. Defaults to ShotTTL/2.
	SweepInterval time.Duration
}

// App is the shot registry: the single owner of the Game state. All inputs
// (chat intents, ball results, joins, leaves, sweep ticks) go through one
// event loop, so every mutation runs to completion before the next one
// starts and every broadcast reflects a consistent state.
type App struct {
	game     *Game
	pubsub   domain.PubSub
	sessions map[domain.SessionID]struct{}
	loop     *loop.Loop
	cfg      Config
}

// internal loop events
type joinEvent struct{ sessionID domain.SessionID }
type leaveEvent struct{ sessionID domain.SessionID }
type shotEvent struct{ shooter, target string }
type resultEvent struct {
	sessionID domain.SessionID
	ballID    string
	result    domain.Result
}
type sweepEvent struct{ now time.Time }

var _ domain.Dispatcher = (*App)(nil)

func NewApp(pubsub domain.PubSub, cfg Config) (*App, error) {
	a := &App{
		game:     NewGame(time.Now),
		pubsub:   pubsub,
		sessions: make(map[domain.SessionID]struct{}),
		cfg:      cfg,
	}
	l, err := loop.New(loop.Config{Handler: a})
	if err != nil {
		return nil, err
	}
	a.loop = l
	return a, nil
}

// Run starts the event loop and, when a ShotTTL is configured, the expiry
// sweep. It returns once ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.loop.Start(ctx); err != nil {
		return err
	}
	if a.cfg.ShotTTL > 0 {
		interval := a.cfg.SweepInterval
		if interval <= 0 {
			interval = a.cfg.ShotTTL / 2
		}
		go a.sweepLoop(ctx, interval)
	}
	<-ctx.Done()
	return nil
}

func (a *App) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := a.loop.Submit(ctx, sweepEvent{now: now}); err != nil {
				return
			}
		}
	}
}

// SubmitShot is the chat ingestion entry point.
func (a *App) SubmitShot(ctx context.Context, shooter, target string) error {
	cmd := domain.ShotCommandPayload{Shooter: shooter, Target: target}
	if err := cmd.Validate(); err != nil {
		return err
	}
	return a.loop.Submit(ctx, shotEvent{shooter: shooter, target: target})
}

// Dispatch converts a wire envelope from a session endpoint into a loop
// event. Malformed envelopes are rejected here, before they reach the loop.
func (a *App) Dispatch(ctx context.Context, msg domain.InboundMessage) error {
	env, err := domain.DecodeEnvelope(msg.Data)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	switch env.T {
	case domain.EventJoin:
		return a.loop.Submit(ctx, joinEvent{sessionID: msg.SessionID})
	case domain.EventLeave:
		return a.loop.Submit(ctx, leaveEvent{sessionID: msg.SessionID})
	case domain.EventBallResult:
		payload, err := domain.DecodePayload[domain.BallResultPayload](env)
		if err != nil {
			return fmt.Errorf("dispatch ballResult: %w", err)
		}
		if err := payload.Validate(); err != nil {
			return fmt.Errorf("dispatch ballResult: %w", err)
		}
		return a.loop.Submit(ctx, resultEvent{
			sessionID: msg.SessionID,
			ballID:    payload.BallID,
			result:    payload.Result,
		})
	case domain.EventShot:
		payload, err := domain.DecodePayload[domain.ShotCommandPayload](env)
		if err != nil {
			return fmt.Errorf("dispatch shot: %w", err)
		}
		if err := payload.Validate(); err != nil {
			return fmt.Errorf("dispatch shot: %w", err)
		}
		return a.loop.Submit(ctx, shotEvent{shooter: payload.Shooter, target: payload.Target})
	default:
		return fmt.Errorf("dispatch: unknown event type %q", env.T)
	}
}

// Handle runs on the loop goroutine; it is the only code that mutates Game.
func (a *App) Handle(ctx context.Context, ev any) error {
	switch e := ev.(type) {
	case joinEvent:
		a.sessions[e.sessionID] = struct{}{}
		a.sendTo(ctx, e.sessionID, domain.EventGameState, a.game.Snapshot())
		slog.InfoContext(ctx, "client connected", "sessionID", e.sessionID, "clients", len(a.sessions))
	case leaveEvent:
		delete(a.sessions, e.sessionID)
		slog.InfoContext(ctx, "client disconnected", "sessionID", e.sessionID, "clients", len(a.sessions))
	case shotEvent:
		shot := a.game.SubmitShot(e.shooter, e.target)
		a.broadcast(ctx, domain.EventNewShot, shot)
		slog.InfoContext(ctx, "shot submitted", "shooter", shot.Shooter, "target", shot.Target, "id", shot.ID)
	case resultEvent:
		if !a.game.ReportOutcome(e.ballID, e.result) {
			slog.WarnContext(ctx, "outcome for unknown or already resolved shot", "ballId", e.ballID, "result", e.result)
			return nil
		}
		score := a.game.Score()
		a.broadcast(ctx, domain.EventGameState, a.game.Snapshot())
		slog.InfoContext(ctx, "shot resolved", "ballId", e.ballID, "result", e.result, "saves", score.Saves, "goals", score.Goals)
	case sweepEvent:
		expired := a.game.SweepExpired(e.now.Add(-a.cfg.ShotTTL))
		if len(expired) == 0 {
			return nil
		}
		for _, shot := range expired {
			slog.WarnContext(ctx, "shot expired without outcome", "id", shot.ID, "shooter", shot.Shooter)
		}
		a.broadcast(ctx, domain.EventGameState, a.game.Snapshot())
	default:
		return fmt.Errorf("handle: unknown event %T", ev)
	}
	return nil
}

func (a *App) broadcast(ctx context.Context, eventType string, payload any) {
	data, err := domain.Encode(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode broadcast", "type", eventType, "err", err)
		return
	}
	for sessionID := range a.sessions {
		a.pubsub.Publish(ctx, domain.SessionTopic(sessionID), domain.Message{Data: data})
	}
}

func (a *App) sendTo(ctx context.Context, sessionID domain.SessionID, eventType string, payload any) {
	data, err := domain.Encode(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode message", "type", eventType, "err", err)
		return
	}
	a.pubsub.Publish(ctx, domain.SessionTopic(sessionID), domain.Message{Data: data})
}
