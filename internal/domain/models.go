package domain

import "time"

// ViewMode selects the top-level screen the application shows
type ViewMode string

const (
	// ViewLanding is the default logged-out screen
	ViewLanding ViewMode = "landing"
	// ViewEmbed is the login-free embedded-player screen
	ViewEmbed ViewMode = "embed"
	// ViewPremium is the visualizer + now-playing screen
	ViewPremium ViewMode = "premium"
)

// ErrorKind classifies device-session failures so the orchestrator can
// react to specific categories without matching on message text
type ErrorKind string

const (
	// ErrNone means no error is currently reported
	ErrNone ErrorKind = ""
	// ErrInitialization covers SDK initialization failures
	ErrInitialization ErrorKind = "initialization"
	// ErrAuthentication covers invalid or expired tokens
	ErrAuthentication ErrorKind = "authentication"
	// ErrAccount covers account-level rejections (e.g. Premium required)
	ErrAccount ErrorKind = "account"
	// ErrConnection covers a device connect attempt resolving to failure
	ErrConnection ErrorKind = "connection"
)

// Credential is a bearer token and the absolute instant it stops working.
// Exactly one credential is live at a time.
type Credential struct {
	Token  string
	Expiry time.Time
}

// Valid reports whether the credential is usable at the given instant
func (c *Credential) Valid(now time.Time) bool {
	return c != nil && c.Token != "" && now.Before(c.Expiry)
}

// Track describes the currently playing track. Values are immutable once
// received; a new track replaces the previous one wholesale.
type Track struct {
	ID          string
	Name        string
	URI         string
	AlbumName   string
	AlbumArtURL string
	Artists     []string
}

// PlaybackState is the paused flag plus the current track (nil when idle).
// It is replaced as a whole on every device state change, never patched.
type PlaybackState struct {
	Paused bool
	Track  *Track
}

// AudioFeatures are the per-track acoustic descriptors that drive the
// visualization parameters
type AudioFeatures struct {
	Tempo            float64
	Energy           float64
	Danceability     float64
	Valence          float64
	Instrumentalness float64
	Liveness         float64
}

// PlayerSnapshot is the consolidated projection of the playback device:
// connection status, the latest playback state, and any surfaced error.
// The session manager replaces it atomically; consumers only ever read it.
type PlayerSnapshot struct {
	Active   bool
	Paused   bool
	Track    *Track
	DeviceID string
	Status   string
	Err      string
	ErrKind  ErrorKind
}

// TrackID returns the current track's identifier, or "" when idle
func (s PlayerSnapshot) TrackID() string {
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}
