package keeper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JoniJuntto/rantalentis/server/domain"
)

const topShooterCount = 5

// Scoreboard is the client's displayed score. Connected, it just mirrors
// gameState broadcasts; offline, Apply keeps a local tally going (the
// leaderboard is registry-owned and has no offline equivalent).
type Scoreboard struct {
	score    domain.Score
	shooters map[string]int
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{shooters: make(map[string]int)}
}

// SetState replaces the displayed state with an authoritative snapshot.
func (b *Scoreboard) SetState(state domain.GameStatePayload) {
	b.score = state.Score
	b.shooters = make(map[string]int, len(state.TopShooters))
	for name, count := range state.TopShooters {
		b.shooters[name] = count
	}
}

// Apply is the offline fallback: count the outcome locally.
func (b *Scoreboard) Apply(result domain.Result) {
	switch result {
	case domain.ResultSave:
		b.score.Saves++
	case domain.ResultGoal:
		b.score.Goals++
	}
}

// Reset zeroes the local counters and clears the displayed leaderboard.
// Display-only: the registry is not told.
func (b *Scoreboard) Reset() {
	b.score = domain.Score{}
	b.shooters = make(map[string]int)
}

func (b *Scoreboard) Score() domain.Score {
	return b.score
}

// Render formats the score line plus the top shooters, highest count first,
// name as tie-break.
func (b *Scoreboard) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saves %d - %d Goals", b.score.Saves, b.score.Goals)

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(b.shooters))
	for name, count := range b.shooters {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > topShooterCount {
		entries = entries[:topShooterCount]
	}
	if len(entries) > 0 {
		sb.WriteString(" | Top shooters:")
		for _, e := range entries {
			fmt.Fprintf(&sb, " %s:%d", e.name, e.count)
		}
	}
	return sb.String()
}
