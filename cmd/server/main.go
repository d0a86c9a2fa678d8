package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JoniJuntto/rantalentis/server"
	"github.com/JoniJuntto/rantalentis/server/application"
	"github.com/JoniJuntto/rantalentis/server/chat"
	"github.com/JoniJuntto/rantalentis/server/domain"
	"github.com/JoniJuntto/rantalentis/utils"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "3012")
	channel := utils.GetEnvDefault("TWITCH_CHANNEL", "huikkakoodaa")
	providerName := utils.GetEnvDefault("CHAT_PROVIDER", "twitch")
	shotTTL := utils.GetEnvIntDefault("SHOT_TTL_SECONDS", 30)

	pubsub := domain.NewSimplePubSub()
	app, err := application.NewApp(pubsub, application.Config{
		ShotTTL: time.Duration(shotTTL) * time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create application", "err", err)
		os.Exit(1)
	}

	onShot := func(ctx context.Context, shooter, cell string) {
		if err := app.SubmitShot(ctx, shooter, cell); err != nil {
			slog.WarnContext(ctx, "failed to submit shot", "shooter", shooter, "cell", cell, "err", err)
		}
	}

	var provider chat.Provider
	switch providerName {
	case "twitch":
		provider = chat.NewTwitchProvider(channel, onShot)
	case "demo":
		provider = chat.NewDemoProvider(3*time.Second, onShot)
	default:
		slog.ErrorContext(ctx, "unknown CHAT_PROVIDER", "value", providerName)
		os.Exit(1)
	}

	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), server.Route(pubsub, app))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return app.Run(egCtx)
	})
	eg.Go(func() error {
		// Chat going down must not take the server with it.
		if err := provider.Run(egCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(egCtx, "chat provider stopped", "err", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	slog.InfoContext(ctx, "rantalentis server listening", "addr", s.Addr(), "channel", channel, "provider", providerName)

	<-egCtx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "err", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "err", err)
		}
	}
	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server stopped with error", "err", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
