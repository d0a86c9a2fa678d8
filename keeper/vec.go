package keeper

// Vec3 is a world-space coordinate. The flight axis is z: shots spawn near
// the viewer at large positive z and travel toward the goal line behind the
// keeper at negative z.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}
