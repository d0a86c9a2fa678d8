package chat

import (
	"context"
	"log/slog"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

const (
	twitchRetryMin = 5 * time.Second
	twitchRetryMax = 60 * time.Second
)

// TwitchProvider listens to a channel's chat anonymously; reading chat
// needs no authentication. Connect failures are never fatal: the game keeps
// running with zero shot throughput and the provider keeps retrying.
type TwitchProvider struct {
	channel string
	handler ShotHandler
}

func NewTwitchProvider(channel string, handler ShotHandler) *TwitchProvider {
	return &TwitchProvider{channel: channel, handler: handler}
}

func (p *TwitchProvider) Run(ctx context.Context) error {
	wait := twitchRetryMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		client := twitch.NewAnonymousClient()
		client.OnConnect(func() {
			slog.InfoContext(ctx, "connected to twitch chat", "channel", p.channel)
		})
		client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
			cell, ok := ParseShootCommand(msg.Message)
			if !ok {
				return
			}
			shooter := msg.User.DisplayName
			if shooter == "" {
				shooter = msg.User.Name
			}
			p.handler(ctx, shooter, cell)
		})
		client.Join(p.channel)

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = client.Disconnect()
			case <-done:
			}
		}()

		err := client.Connect()
		close(done)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.WarnContext(ctx, "twitch chat connection lost, retrying",
			"channel", p.channel, "err", err, "wait", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > twitchRetryMax {
			wait = twitchRetryMax
		}
	}
}
