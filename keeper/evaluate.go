package keeper

import (
	"math"

	"github.com/JoniJuntto/rantalentis/keeper/track"
	"github.com/JoniJuntto/rantalentis/server/domain"
	"github.com/JoniJuntto/rantalentis/utils"
)

// SaveRadius is how close, in pixels, any tracked hand point must be to the
// shot's projected position to count as a save.
const SaveRadius = 120.0

// keeperLandmarks are the points that actually block a ball: the four
// fingertips, the thumb tip and the palm center.
var keeperLandmarks = [...]int{8, 12, 16, 20, 4, 9}

// Evaluate is the save-vs-goal hit test, run once per shot at the moment it
// reaches the goal line. The camera feed is mirrored relative to the world
// view, so landmark x is flipped before scaling to pixels.
func Evaluate(cam *Camera, frame track.Frame, shotPos Vec3) domain.Result {
	if len(frame.Hands) == 0 {
		return domain.ResultGoal
	}

	shotX, shotY := cam.WorldToScreen(shotPos)

	for _, hand := range frame.Hands {
		for _, idx := range keeperLandmarks {
			if idx >= len(hand) {
				continue
			}
			lm := hand[idx]
			if !utils.IsFinite(lm.X) || !utils.IsFinite(lm.Y) {
				continue
			}
			handX := (1 - lm.X) * cam.Width
			handY := lm.Y * cam.Height
			if math.Hypot(shotX-handX, shotY-handY) < SaveRadius {
				return domain.ResultSave
			}
		}
	}
	return domain.ResultGoal
}
