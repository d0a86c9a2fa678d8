package chat

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

var demoShooters = []string{"TestUser", "TestBot", "Huikka", "Rantakeisari"}

// DemoProvider fires random valid shots on a ticker. Useful for local demos
// and load testing without a live chat.
type DemoProvider struct {
	interval time.Duration
	handler  ShotHandler
}

func NewDemoProvider(interval time.Duration, handler ShotHandler) *DemoProvider {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &DemoProvider{interval: interval, handler: handler}
}

func (p *DemoProvider) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.handler(ctx, randomShooter(), RandomCell())
		}
	}
}

// RandomCell picks one of the 25 goal grid cells.
func RandomCell() string {
	row := rune('A' + rand.IntN(5))
	col := 1 + rand.IntN(5)
	return fmt.Sprintf("%c%d", row, col)
}

func randomShooter() string {
	return demoShooters[rand.IntN(len(demoShooters))]
}
