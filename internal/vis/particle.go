// Package vis renders the particle visualization: a fixed field of
// particles whose motion, size and color follow the current track's
// acoustic features.
package vis

import "math/rand"

// FieldSize is the fixed particle count. The field is reseeded only when
// the rendering surface is resized; between resizes every particle's
// position persists and evolves frame over frame.
const FieldSize = 100

// Particle is one animated point
type Particle struct {
	X, Y    float64
	Radius  float64
	SpeedX  float64
	SpeedY  float64
	Hue     float64
	Opacity float64
}

// Field holds the particle collection and the bounds it lives in
type Field struct {
	Particles []Particle
	Width     float64
	Height    float64

	rng *rand.Rand
}

// NewField creates an empty field; call Reseed before advancing
func NewField(rng *rand.Rand) *Field {
	return &Field{rng: rng}
}

// Reseed recreates all particles uniformly within the new bounds:
// radius in [1,4), velocity components in [-0.75,0.75), hue seed in
// [0,360), base opacity in [0.2,0.7)
func (f *Field) Reseed(width, height float64) {
	f.Width = width
	f.Height = height
	f.Particles = make([]Particle, FieldSize)
	for i := range f.Particles {
		f.Particles[i] = Particle{
			X:       f.rng.Float64() * width,
			Y:       f.rng.Float64() * height,
			Radius:  f.rng.Float64()*3 + 1,
			SpeedX:  (f.rng.Float64() - 0.5) * 1.5,
			SpeedY:  (f.rng.Float64() - 0.5) * 1.5,
			Hue:     f.rng.Float64() * 360,
			Opacity: f.rng.Float64()*0.5 + 0.2,
		}
	}
}

// Advance moves every particle by its velocity scaled with the frame's
// speed multiplier, wrapping toroidally once a particle exits the bounds
// by more than its own radius
func (f *Field) Advance(params FrameParams) {
	for i := range f.Particles {
		p := &f.Particles[i]
		p.X += p.SpeedX * params.SpeedMultiplier
		p.Y += p.SpeedY * params.SpeedMultiplier

		if p.X > f.Width+p.Radius {
			p.X = -p.Radius
		} else if p.X < -p.Radius {
			p.X = f.Width + p.Radius
		}
		if p.Y > f.Height+p.Radius {
			p.Y = -p.Radius
		} else if p.Y < -p.Radius {
			p.Y = f.Height + p.Radius
		}
	}
}

// RenderedRadius is the particle's radius for this frame after the beat
// pulse is applied, never below 1
func (p *Particle) RenderedRadius(params FrameParams) float64 {
	r := p.Radius + params.SizePulse
	if r < 1 {
		return 1
	}
	return r
}
