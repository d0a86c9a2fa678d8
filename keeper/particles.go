package keeper

import (
	"math/rand/v2"
	"time"
)

const (
	explosionParticles = 12
	particleLifetime   = 1000 * time.Millisecond
	particleSpread     = 20.0
	particleDrag       = 0.95
)

// Particle is a save-explosion fragment. Purely cosmetic: particles never
// influence outcomes or timing.
type Particle struct {
	Position Vec3
	Velocity Vec3
	Born     time.Time
	Opacity  float64
	Scale    float64
}

func (s *Simulator) spawnExplosion(at Vec3, now time.Time) {
	for range explosionParticles {
		s.particles = append(s.particles, &Particle{
			Position: at,
			Velocity: Vec3{
				X: (rand.Float64() - 0.5) * particleSpread,
				Y: (rand.Float64() - 0.5) * particleSpread,
				Z: (rand.Float64() - 0.5) * particleSpread,
			},
			Born:    now,
			Opacity: 0.8,
			Scale:   1,
		})
	}
}

func (s *Simulator) stepParticles(now time.Time) {
	kept := s.particles[:0]
	for _, p := range s.particles {
		progress := float64(now.Sub(p.Born)) / float64(particleLifetime)
		if progress >= 1 {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(1.0 / 60))
		p.Velocity = p.Velocity.Scale(particleDrag)
		p.Opacity = 0.8 * (1 - progress)
		p.Scale = 1 - progress*0.5
		kept = append(kept, p)
	}
	s.particles = kept
}

// Particles returns the live explosion fragments for rendering.
func (s *Simulator) Particles() []*Particle {
	return s.particles
}
