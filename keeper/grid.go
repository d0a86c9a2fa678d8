package keeper

import (
	"fmt"

	"github.com/JoniJuntto/rantalentis/server/domain"
)

const (
	// GoalLineZ is where the flight ends, just behind the keeper.
	GoalLineZ = -2.0
	// SpawnZ is where shots appear, on the viewer's side.
	SpawnZ = 25.0

	gridColSpread = 3.0
	gridRowSpread = 2.5
)

// TargetPosition maps a goal grid cell to its world coordinate on the goal
// plane. Columns 1..5 spread left to right, rows A..E top to bottom, with
// C3 at the center.
func TargetPosition(cell string) (Vec3, error) {
	if !domain.ValidCell(cell) {
		return Vec3{}, fmt.Errorf("invalid grid cell %q", cell)
	}
	row := float64(cell[0] - 'A')
	col := float64(cell[1] - '1')
	return Vec3{
		X: (col - 2) * gridColSpread,
		Y: (2 - row) * gridRowSpread,
		Z: GoalLineZ,
	}, nil
}
