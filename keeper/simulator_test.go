package keeper

import (
	"testing"
	"time"

	"github.com/JoniJuntto/rantalentis/keeper/track"
	"github.com/JoniJuntto/rantalentis/server/domain"
)

// stubFrames is a hand-tracking source with a settable frame.
type stubFrames struct {
	frame track.Frame
}

func (s *stubFrames) Latest() track.Frame { return s.frame }

func testShot(id, target string) domain.Shot {
	return domain.Shot{
		ID:        id,
		Target:    target,
		Shooter:   "huikka",
		Timestamp: time.UnixMilli(1700000000000).UnixMilli(),
		Status:    domain.StatusIncoming,
	}
}

func coveringFrame(cam *Camera, cell string) track.Frame {
	pos, _ := TargetPosition(cell)
	x, y := cam.WorldToScreen(pos)
	return track.Frame{Hands: []track.Hand{handCovering(cam, x, y)}}
}

func TestSimulator_FlyingUntilGoalLine(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{})

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "C3"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	for _, dt := range []time.Duration{0, time.Second, FlightDuration - time.Millisecond} {
		if outcomes := sim.Step(start.Add(dt)); len(outcomes) != 0 {
			t.Fatalf("Step at +%v resolved %v, want nothing", dt, outcomes)
		}
	}
	if sim.Active() != 1 {
		t.Errorf("Active() = %d, want 1", sim.Active())
	}
}

func TestSimulator_GoalResolvesImmediately(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{}) // no hands, every shot is a goal

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "A1"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	outcomes := sim.Step(start.Add(FlightDuration))
	if len(outcomes) != 1 {
		t.Fatalf("Step at goal line resolved %d shots, want 1", len(outcomes))
	}
	if outcomes[0].BallID != "s1" || outcomes[0].Result != domain.ResultGoal {
		t.Errorf("outcome = %+v, want s1 goal", outcomes[0])
	}
	if sim.Active() != 0 {
		t.Errorf("Active() = %d after goal, want 0", sim.Active())
	}
}

func TestSimulator_SaveBouncesBeforeResolving(t *testing.T) {
	cam := NewCamera(1280, 720)
	frames := &stubFrames{frame: coveringFrame(cam, "C3")}
	sim := NewSimulator(cam, frames)

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "C3"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// The save is detected at the goal line but the shot keeps animating
	// through its bounce before the outcome comes out.
	if outcomes := sim.Step(start.Add(FlightDuration)); len(outcomes) != 0 {
		t.Fatalf("save resolved immediately: %v", outcomes)
	}
	if sim.Active() != 1 {
		t.Fatalf("Active() = %d during bounce, want 1", sim.Active())
	}

	// The hit test already happened; losing tracking now changes nothing.
	frames.frame = track.Frame{}

	if outcomes := sim.Step(start.Add(FlightDuration + BounceDuration - time.Millisecond)); len(outcomes) != 0 {
		t.Fatalf("bounce resolved early: %v", outcomes)
	}

	outcomes := sim.Step(start.Add(FlightDuration + BounceDuration))
	if len(outcomes) != 1 {
		t.Fatalf("Step at bounce end resolved %d shots, want 1", len(outcomes))
	}
	if outcomes[0].BallID != "s1" || outcomes[0].Result != domain.ResultSave {
		t.Errorf("outcome = %+v, want s1 save", outcomes[0])
	}
	if sim.Active() != 0 {
		t.Errorf("Active() = %d after save, want 0", sim.Active())
	}
}

func TestSimulator_ResolvesExactlyOnce(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{})

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "B2"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	seen := 0
	for dt := time.Duration(0); dt <= FlightDuration+BounceDuration+time.Second; dt += 100 * time.Millisecond {
		seen += len(sim.Step(start.Add(dt)))
	}
	if seen != 1 {
		t.Errorf("shot resolved %d times, want exactly 1", seen)
	}
}

func TestSimulator_OutcomesInArrivalOrder(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{})

	start := time.UnixMilli(1700000000000)
	for i, id := range []string{"s1", "s2", "s3"} {
		if err := sim.Spawn(testShot(id, "C3"), start.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("Spawn(%s): %v", id, err)
		}
	}

	outcomes := sim.Step(start.Add(FlightDuration + time.Second))
	if len(outcomes) != 3 {
		t.Fatalf("resolved %d shots, want 3", len(outcomes))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if outcomes[i].BallID != want {
			t.Errorf("outcomes[%d].BallID = %q, want %q", i, outcomes[i].BallID, want)
		}
	}
}

func TestSimulator_SpawnDuplicateID(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{})

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "C3"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := sim.Spawn(testShot("s1", "E5"), start); err != nil {
		t.Fatalf("duplicate Spawn: %v", err)
	}
	if sim.Active() != 1 {
		t.Errorf("Active() = %d after duplicate spawn, want 1", sim.Active())
	}
}

func TestSimulator_SpawnInvalidCell(t *testing.T) {
	cam := NewCamera(1280, 720)
	sim := NewSimulator(cam, &stubFrames{})

	if err := sim.Spawn(testShot("s1", "Z9"), time.Now()); err == nil {
		t.Error("Spawn accepted an invalid cell")
	}
	if sim.Active() != 0 {
		t.Errorf("Active() = %d after rejected spawn, want 0", sim.Active())
	}
}

func TestSimulator_SaveSpawnsParticles(t *testing.T) {
	cam := NewCamera(1280, 720)
	frames := &stubFrames{frame: coveringFrame(cam, "C3")}
	sim := NewSimulator(cam, frames)

	start := time.UnixMilli(1700000000000)
	if err := sim.Spawn(testShot("s1", "C3"), start); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	sim.Step(start.Add(FlightDuration))
	if got := len(sim.Particles()); got == 0 {
		t.Error("no explosion particles after a save")
	}

	// Particles fade out and disappear well before the next shot.
	sim.Step(start.Add(FlightDuration + 2*time.Second))
	if got := len(sim.Particles()); got != 0 {
		t.Errorf("%d particles still alive after their lifetime", got)
	}
}
