package keeper

import (
	"log/slog"
	"math"
	"time"

	"github.com/JoniJuntto/rantalentis/keeper/track"
	"github.com/JoniJuntto/rantalentis/server/domain"
)

const (
	// FlightDuration is how long a shot takes from spawn to the goal line.
	FlightDuration = 5000 * time.Millisecond
	// BounceDuration is how long a saved shot recoils toward the viewer.
	BounceDuration = 1500 * time.Millisecond

	bounceDepth = 30.0 // how far back toward the viewer a save bounces

	spawnScale = 2.5 // oversized "close to viewer" starting scale
	scaleDrop  = 1.8 // shrink over the flight as the shot recedes
)

// Phase is the lifecycle state of a client-side shot.
type Phase uint8

const (
	PhaseFlying Phase = iota
	PhaseBouncing
)

// ClientShot mirrors one server-announced shot while it is animated
// locally. It exists from the newShot event until its outcome is reported.
type ClientShot struct {
	domain.Shot

	TargetPosition Vec3
	StartTime      time.Time
	Phase          Phase
	BounceStart    time.Time

	// visual state, no effect on the outcome
	Position Vec3
	Scale    float64
	Rotation Vec3
}

// Outcome is a resolved shot ready to be reported to the registry.
type Outcome struct {
	BallID string
	Result domain.Result
}

// Simulator owns every local shot and advances them through
// flying -> bouncing -> resolved on each render tick. All methods must be
// called from the one goroutine that drives the tick.
type Simulator struct {
	camera *Camera
	frames track.Source

	shots map[string]*ClientShot
	order []string // arrival order; map iteration alone would jitter

	particles []*Particle
}

func NewSimulator(camera *Camera, frames track.Source) *Simulator {
	return &Simulator{
		camera: camera,
		frames: frames,
		shots:  make(map[string]*ClientShot),
	}
}

// Spawn creates the local instance for a server-announced shot.
func (s *Simulator) Spawn(shot domain.Shot, now time.Time) error {
	if _, exists := s.shots[shot.ID]; exists {
		return nil
	}
	target, err := TargetPosition(shot.Target)
	if err != nil {
		return err
	}
	s.shots[shot.ID] = &ClientShot{
		Shot:           shot,
		TargetPosition: target,
		StartTime:      now,
		Phase:          PhaseFlying,
		Position:       Vec3{X: target.X, Y: target.Y, Z: SpawnZ},
		Scale:          spawnScale,
	}
	s.order = append(s.order, shot.ID)
	return nil
}

// Step advances every shot by one tick and returns the outcomes that
// resolved during it. Each shot id resolves exactly once: resolution
// removes the shot before its outcome is returned.
func (s *Simulator) Step(now time.Time) []Outcome {
	var resolved []Outcome
	kept := s.order[:0]
	for _, id := range s.order {
		shot, ok := s.shots[id]
		if !ok {
			continue
		}
		if outcome, done := s.step(shot, now); done {
			delete(s.shots, id)
			resolved = append(resolved, outcome)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept

	s.stepParticles(now)
	return resolved
}

func (s *Simulator) step(shot *ClientShot, now time.Time) (Outcome, bool) {
	switch shot.Phase {
	case PhaseFlying:
		progress := clamp01(float64(now.Sub(shot.StartTime)) / float64(FlightDuration))
		eased := EaseInOutQuad(progress)
		shot.Position.Z = SpawnZ + (shot.TargetPosition.Z-SpawnZ)*eased
		shot.Scale = spawnScale - scaleDrop*eased
		shot.Rotation.X += 0.1
		shot.Rotation.Y += 0.05

		if progress < 1 {
			return Outcome{}, false
		}

		// Goal line reached: hit-test once against the latest hand frame.
		result := Evaluate(s.camera, s.frames.Latest(), shot.TargetPosition)
		if result == domain.ResultGoal {
			return Outcome{BallID: shot.ID, Result: domain.ResultGoal}, true
		}
		shot.Phase = PhaseBouncing
		shot.BounceStart = now
		s.spawnExplosion(shot.Position, now)
		return Outcome{}, false

	case PhaseBouncing:
		bounceProgress := clamp01(float64(now.Sub(shot.BounceStart)) / float64(BounceDuration))
		shot.Position.Z = shot.TargetPosition.Z + bounceDepth*EaseOutBounce(bounceProgress)
		shot.Rotation.X += 0.3
		shot.Rotation.Y += 0.2
		shot.Rotation.Z += 0.1
		shot.Scale = 0.7 + 0.5*math.Sin(bounceProgress*math.Pi)

		if bounceProgress < 1 {
			return Outcome{}, false
		}
		return Outcome{BallID: shot.ID, Result: domain.ResultSave}, true

	default:
		slog.Warn("shot in unknown phase, dropping", "id", shot.ID, "phase", shot.Phase)
		return Outcome{BallID: shot.ID, Result: domain.ResultGoal}, true
	}
}

// Active returns the number of in-flight local shots.
func (s *Simulator) Active() int {
	return len(s.shots)
}

// Shots returns the live shot objects for rendering, in arrival order.
func (s *Simulator) Shots() []*ClientShot {
	out := make([]*ClientShot, 0, len(s.order))
	for _, id := range s.order {
		if shot, ok := s.shots[id]; ok {
			out = append(out, shot)
		}
	}
	return out
}
