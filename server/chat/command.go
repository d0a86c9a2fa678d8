// Package chat turns raw chat traffic into shot intents for the registry.
package chat

import (
	"context"
	"regexp"
	"strings"
)

// ShotHandler receives each parsed shot command.
type ShotHandler func(ctx context.Context, shooter, cell string)

// Provider is a source of shot commands. Run blocks until ctx is cancelled.
type Provider interface {
	Run(ctx context.Context) error
}

var shootPattern = regexp.MustCompile(`(?i)!shoot\s+([A-Ea-e][1-5])`)

// ParseShootCommand extracts the target cell from a chat message. Anything
// that is not a !shoot command is ignored without error.
func ParseShootCommand(text string) (string, bool) {
	m := shootPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}
