// Command keeper is the goalkeeper client: it mirrors server-announced
// shots, animates them on a local tick, hit-tests them against the tracked
// hand at the goal line and reports each outcome back.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/joho/godotenv"

	"github.com/JoniJuntto/rantalentis/keeper"
	"github.com/JoniJuntto/rantalentis/keeper/track"
	"github.com/JoniJuntto/rantalentis/server/chat"
	"github.com/JoniJuntto/rantalentis/server/domain"
	"github.com/JoniJuntto/rantalentis/utils"
)

const tickRate = time.Second / 60

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "3012")
	width := utils.GetEnvIntDefault("WINDOW_WIDTH", 1280)
	height := utils.GetEnvIntDefault("WINDOW_HEIGHT", 720)
	offline := utils.GetEnvDefault("KEEPER_OFFLINE", "") != ""
	handFeed := utils.GetEnvDefault("HAND_FEED", "")

	store := track.NewStore()
	if handFeed != "" {
		go runHandFeed(ctx, handFeed, store)
	}

	camera := keeper.NewCamera(float64(width), float64(height))

	if offline {
		runOffline(ctx, camera, store)
		return
	}

	serverURL := fmt.Sprintf("ws://%s:%s/ws", addr, port)
	for {
		if ctx.Err() != nil {
			return
		}
		err := keeperSession(ctx, serverURL, camera, store)
		if err != nil && ctx.Err() == nil {
			slog.Warn("session ended, reconnecting", "err", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func runHandFeed(ctx context.Context, source string, store *track.Store) {
	r := os.Stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			slog.Warn("cannot open hand feed, hit testing degrades to all goals", "source", source, "err", err)
			return
		}
		defer f.Close()
		r = f
	}
	if err := track.NewFeedReader(r, store).Run(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("hand feed stopped", "err", err)
	}
}

// keeperSession runs one connected lifetime: a read goroutine feeding the
// simulator and a 60 Hz tick loop resolving shots and reporting outcomes.
func keeperSession(ctx context.Context, serverURL string, camera *keeper.Camera, store *track.Store) error {
	conn, _, err := websocket.Dial(ctx, serverURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	slog.Info("connected", "server", serverURL)

	sim := keeper.NewSimulator(camera, store)
	board := keeper.NewScoreboard()
	var mu sync.Mutex

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			env, err := domain.DecodeEnvelope(data)
			if err != nil {
				slog.Warn("dropping malformed message", "err", err)
				continue
			}
			switch env.T {
			case domain.EventNewShot:
				shot, err := domain.DecodePayload[domain.Shot](env)
				if err != nil || shot.Validate() != nil {
					slog.Warn("dropping malformed newShot", "err", err)
					continue
				}
				mu.Lock()
				if err := sim.Spawn(shot, time.Now()); err != nil {
					slog.Warn("cannot spawn shot", "id", shot.ID, "err", err)
				}
				mu.Unlock()
				slog.Info("incoming shot", "shooter", shot.Shooter, "target", shot.Target)
			case domain.EventGameState:
				state, err := domain.DecodePayload[domain.GameStatePayload](env)
				if err != nil {
					slog.Warn("dropping malformed gameState", "err", err)
					continue
				}
				mu.Lock()
				board.SetState(state)
				rendered := board.Render()
				mu.Unlock()
				slog.Info(rendered)
			case domain.EventPing:
				pong, _ := domain.Encode(domain.EventPong, nil)
				if err := conn.Write(ctx, websocket.MessageText, pong); err != nil {
					readErr <- err
					return
				}
			default:
				slog.Warn("unknown event from server", "type", env.T)
			}
		}
	}()

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "shutdown")
			return nil
		case err := <-readErr:
			return fmt.Errorf("read: %w", err)
		case now := <-ticker.C:
			mu.Lock()
			outcomes := sim.Step(now)
			mu.Unlock()
			for _, o := range outcomes {
				data, err := domain.Encode(domain.EventBallResult, domain.BallResultPayload{
					BallID: o.BallID,
					Result: o.Result,
				})
				if err != nil {
					slog.Error("failed to encode ballResult", "err", err)
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					// Connection is gone; keep the display honest locally.
					mu.Lock()
					board.Apply(o.Result)
					mu.Unlock()
					return fmt.Errorf("write ballResult: %w", err)
				}
				slog.Info("reported outcome", "ballId", o.BallID, "result", o.Result)
			}
		}
	}
}

// runOffline plays the game without a server: random local shots, local
// scoring. Handy for testing the camera and tracking setup.
func runOffline(ctx context.Context, camera *keeper.Camera, store *track.Store) {
	slog.Info("running offline, shots are generated locally")

	sim := keeper.NewSimulator(camera, store)
	board := keeper.NewScoreboard()

	spawn := time.NewTicker(3 * time.Second)
	defer spawn.Stop()
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	nextID := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-spawn.C:
			nextID++
			shot := domain.Shot{
				ID:        fmt.Sprintf("local-%d", nextID),
				Target:    chat.RandomCell(),
				Shooter:   "TestBot",
				Timestamp: now.UnixMilli(),
				Status:    domain.StatusIncoming,
			}
			if err := sim.Spawn(shot, now); err != nil {
				slog.Warn("cannot spawn shot", "err", err)
				continue
			}
			slog.Info("incoming shot", "target", shot.Target)
		case now := <-ticker.C:
			for _, o := range sim.Step(now) {
				board.Apply(o.Result)
				slog.Info("shot resolved", "ballId", o.BallID, "result", o.Result)
				slog.Info(board.Render())
			}
		}
	}
}
