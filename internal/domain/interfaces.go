package domain

import "context"

// FeatureSource retrieves the acoustic descriptors for a single track.
// Implementations never return an error to the caller: missing inputs,
// transport failures and non-success responses all resolve to nil.
type FeatureSource interface {
	// Fetch returns the features for trackID, or nil when unavailable
	Fetch(ctx context.Context, trackID, token string) *AudioFeatures
}

// PlaybackStarter issues a one-shot "start playback" command against a
// device. The command is fire-and-forget: outcomes are only observable in
// logs, and the caller is responsible for at-most-once invocation.
type PlaybackStarter interface {
	Start(ctx context.Context, token, deviceID string, trackURIs []string)
}

// Session owns the lifecycle of one playback device and projects its
// event stream into a consolidated PlayerSnapshot
type Session interface {
	// Bind tears down any previously bound device and constructs a new one
	// for the given credential. Construction and connection are
	// asynchronous; progress is observable through Snapshot/Updates.
	Bind(ctx context.Context, cred *Credential) error

	// Teardown unregisters listeners, disconnects the device and clears
	// the binding. Safe to call at any point, including before a connect
	// attempt has completed.
	Teardown() error

	// Snapshot returns the current consolidated device projection
	Snapshot() PlayerSnapshot

	// Updates emits a snapshot after every projection change
	Updates() <-chan PlayerSnapshot

	// Transport controls. Each is a no-op while no device is bound;
	// commands are never queued or buffered.
	TogglePlay(ctx context.Context)
	NextTrack(ctx context.Context)
	PreviousTrack(ctx context.Context)
}

// Config is the application configuration surface
type Config interface {
	// ClientID returns the provider application client id ("" when unset)
	ClientID() string

	// RedirectURI returns the OAuth redirect URI
	RedirectURI() string

	// TrackURIs returns the fixed ordered play queue (provider:track:ID)
	TrackURIs() []string

	// Scopes returns the OAuth scope list
	Scopes() []string

	// OutputDir returns the directory rendered frames are published to
	OutputDir() string
}
