package keeper

import "math"

// Camera is a minimal perspective projection, enough to put a world-space
// shot into the same pixel coordinate system as the tracking landmarks. It
// sits on the z axis looking toward negative z.
type Camera struct {
	FOV    float64 // vertical field of view, degrees
	Width  float64 // viewport width, pixels
	Height float64 // viewport height, pixels
	Z      float64 // camera position on the flight axis
}

func NewCamera(width, height float64) *Camera {
	return &Camera{
		FOV:    75,
		Width:  width,
		Height: height,
		Z:      10,
	}
}

// WorldToScreen projects p to pixel coordinates, origin top-left.
func (c *Camera) WorldToScreen(p Vec3) (float64, float64) {
	viewZ := c.Z - p.Z
	if viewZ <= 0 {
		// Behind the camera; park it off-screen.
		return -c.Width, -c.Height
	}
	tanHalf := math.Tan(c.FOV * math.Pi / 360)
	aspect := c.Width / c.Height

	ndcY := p.Y / (viewZ * tanHalf)
	ndcX := p.X / (viewZ * tanHalf * aspect)

	x := (ndcX + 1) * c.Width / 2
	y := (-ndcY + 1) * c.Height / 2
	return x, y
}
