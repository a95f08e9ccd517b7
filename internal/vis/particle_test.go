package vis

import (
	"math/rand"
	"testing"
	"time"

	"github.com/auroraviz/aurora/internal/domain"
)

func newTestField() *Field {
	return NewField(rand.New(rand.NewSource(42)))
}

func TestReseed_CountAndBounds(t *testing.T) {
	sizes := []struct{ w, h float64 }{
		{1920, 1080},
		{800, 600},
		{320, 240},
		{1, 1},
	}

	f := newTestField()
	for _, size := range sizes {
		f.Reseed(size.w, size.h)

		if len(f.Particles) != FieldSize {
			t.Fatalf("after reseed to %vx%v: want %d particles, got %d",
				size.w, size.h, FieldSize, len(f.Particles))
		}
		for i, p := range f.Particles {
			if p.X < 0 || p.X >= size.w || p.Y < 0 || p.Y >= size.h {
				t.Errorf("particle %d outside bounds %vx%v: (%v, %v)",
					i, size.w, size.h, p.X, p.Y)
			}
			if p.Radius < 1 || p.Radius >= 4 {
				t.Errorf("particle %d radius out of [1,4): %v", i, p.Radius)
			}
			if p.SpeedX < -0.75 || p.SpeedX >= 0.75 || p.SpeedY < -0.75 || p.SpeedY >= 0.75 {
				t.Errorf("particle %d velocity out of [-0.75,0.75): (%v, %v)",
					i, p.SpeedX, p.SpeedY)
			}
			if p.Hue < 0 || p.Hue >= 360 {
				t.Errorf("particle %d hue out of [0,360): %v", i, p.Hue)
			}
			if p.Opacity < 0.2 || p.Opacity >= 0.7 {
				t.Errorf("particle %d opacity out of [0.2,0.7): %v", i, p.Opacity)
			}
		}
	}
}

func TestAdvance_ToroidalWrap(t *testing.T) {
	tests := []struct {
		name           string
		x, y           float64
		speedX, speedY float64
		wantX, wantY   float64
	}{
		{
			name:  "Exits right edge beyond radius",
			x:     101, y: 50, speedX: 2, speedY: 0,
			wantX: -2, wantY: 50, // wraps to -radius
		},
		{
			name:  "Exits left edge beyond radius",
			x:     -1, y: 50, speedX: -2, speedY: 0,
			wantX: 102, wantY: 50, // wraps to width+radius
		},
		{
			name:  "Exits bottom edge beyond radius",
			x:     50, y: 101, speedX: 0, speedY: 2,
			wantX: 50, wantY: -2,
		},
		{
			name:  "Exits top edge beyond radius",
			x:     50, y: -1, speedX: 0, speedY: -2,
			wantX: 50, wantY: 102,
		},
		{
			name:  "Stays inside - no wrap",
			x:     50, y: 50, speedX: 1, speedY: -1,
			wantX: 51, wantY: 49,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField()
			f.Width = 100
			f.Height = 100
			f.Particles = []Particle{{
				X: tt.x, Y: tt.y,
				Radius: 2,
				SpeedX: tt.speedX, SpeedY: tt.speedY,
			}}

			f.Advance(FrameParams{SpeedMultiplier: 1})

			p := f.Particles[0]
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("want (%v, %v), got (%v, %v)", tt.wantX, tt.wantY, p.X, p.Y)
			}
		})
	}
}

func TestRenderedRadius_FlooredAtOne(t *testing.T) {
	p := Particle{Radius: 1.5}

	// Extreme negative pulse must never shrink below 1
	params := ComputeFrameParams(true, &domain.AudioFeatures{
		Tempo:        240,
		Energy:       1,
		Danceability: 1,
	}, time.UnixMilli(0))

	for ms := int64(0); ms < 2000; ms += 7 {
		params = ComputeFrameParams(true, &domain.AudioFeatures{
			Tempo:        240,
			Energy:       1,
			Danceability: 1,
		}, time.UnixMilli(ms))
		if r := p.RenderedRadius(params); r < 1 {
			t.Fatalf("rendered radius below 1 at t=%dms: %v", ms, r)
		}
	}
}
