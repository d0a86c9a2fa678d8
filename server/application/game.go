package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/JoniJuntto/rantalentis/server/domain"
)

// Game holds the authoritative shootout state: score, in-flight shots and
// the per-shooter leaderboard. It is a plain reducer with no I/O; the App
// serializes every call through the game loop, so no locking happens here.
type Game struct {
	score       domain.Score
	activeBalls []domain.Shot
	topShooters map[string]int

	// ids handed out so far; the registry never reuses one, even after the
	// shot is long gone from activeBalls.
	usedIDs map[string]struct{}

	now func() time.Time
}

func NewGame(now func() time.Time) *Game {
	if now == nil {
		now = time.Now
	}
	return &Game{
		topShooters: make(map[string]int),
		usedIDs:     make(map[string]struct{}),
		now:         now,
	}
}

// SubmitShot creates a shot with a fresh id, appends it to the active set
// and counts it on the leaderboard.
func (g *Game) SubmitShot(shooter, target string) domain.Shot {
	shot := domain.Shot{
		ID:        g.newShotID(),
		Target:    target,
		Shooter:   shooter,
		Timestamp: g.now().UnixMilli(),
		Status:    domain.StatusIncoming,
	}
	g.activeBalls = append(g.activeBalls, shot)
	g.topShooters[shooter]++
	return shot
}

// ReportOutcome resolves a shot. The score is only touched when the id was
// actually present in the active set, so duplicate or late reports cannot
// double-count.
func (g *Game) ReportOutcome(shotID string, result domain.Result) bool {
	idx := -1
	for i, ball := range g.activeBalls {
		if ball.ID == shotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	g.activeBalls = append(g.activeBalls[:idx], g.activeBalls[idx+1:]...)
	switch result {
	case domain.ResultSave:
		g.score.Saves++
	case domain.ResultGoal:
		g.score.Goals++
	}
	return true
}

// SweepExpired drops shots created before cutoff. Expired shots were never
// resolved by any client, so they leave the score untouched.
func (g *Game) SweepExpired(cutoff time.Time) []domain.Shot {
	cutoffMilli := cutoff.UnixMilli()
	var expired []domain.Shot
	kept := g.activeBalls[:0]
	for _, ball := range g.activeBalls {
		if ball.Timestamp < cutoffMilli {
			expired = append(expired, ball)
			continue
		}
		kept = append(kept, ball)
	}
	g.activeBalls = kept
	return expired
}

// Score returns the current tally.
func (g *Game) Score() domain.Score {
	return g.score
}

// Snapshot returns a deep copy safe to hand to other goroutines.
func (g *Game) Snapshot() domain.GameStatePayload {
	balls := make([]domain.Shot, len(g.activeBalls))
	copy(balls, g.activeBalls)
	shooters := make(map[string]int, len(g.topShooters))
	for name, count := range g.topShooters {
		shooters[name] = count
	}
	return domain.GameStatePayload{
		Score:       g.score,
		ActiveBalls: balls,
		TopShooters: shooters,
	}
}

// newShotID builds a time-based id with a random tie-break so shots created
// in the same millisecond stay distinguishable.
func (g *Game) newShotID() string {
	for {
		var suffix [2]byte
		_, _ = rand.Read(suffix[:])
		id := fmt.Sprintf("%d-%s", g.now().UnixMilli(), hex.EncodeToString(suffix[:]))
		if _, taken := g.usedIDs[id]; taken {
			continue
		}
		g.usedIDs[id] = struct{}{}
		return id
	}
}
