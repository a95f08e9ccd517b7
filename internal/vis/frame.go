package vis

import (
	"math"
	"time"

	"github.com/auroraviz/aurora/internal/domain"
)

// Defaults used while no features are known for the current track
const (
	defaultEnergy       = 0.5
	defaultTempo        = 120
	defaultValence      = 0.5
	defaultDanceability = 0.5

	// pausedSpeed is the fixed slow drift while playback is paused
	pausedSpeed = 0.2
)

// FrameParams are the per-frame animation inputs derived from playback
// state and acoustic features
type FrameParams struct {
	SpeedMultiplier float64
	BaseHue         float64
	SizePulse       float64
}

// ComputeFrameParams derives the animation parameters for one frame.
// Tempo scales speed around a 120 BPM baseline; valence shifts the base
// hue from blue (sad) toward green/yellow (happy); the pulse follows a
// sine of wall-clock time scaled by tempo and is zero while paused.
func ComputeFrameParams(playing bool, features *domain.AudioFeatures, now time.Time) FrameParams {
	energy := defaultEnergy
	tempo := float64(defaultTempo)
	valence := defaultValence
	danceability := defaultDanceability
	if features != nil {
		energy = features.Energy
		tempo = features.Tempo
		valence = features.Valence
		danceability = features.Danceability
	}

	speed := pausedSpeed
	pulse := 0.0
	if playing {
		speed = (tempo / 120) * (energy*2 + 0.5)
		pulse = math.Sin(float64(now.UnixMilli()) * (tempo / 60000) * math.Pi)
	}

	return FrameParams{
		SpeedMultiplier: speed,
		BaseHue:         180 + valence*120,
		SizePulse:       pulse * energy * 5 * danceability,
	}
}
