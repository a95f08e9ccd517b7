// Package sdk defines the boundary to the external playback SDK. The SDK
// is a black box from the application's point of view: it produces devices
// that emit lifecycle/state events and accept transport commands.
package sdk

import (
	"context"

	"github.com/auroraviz/aurora/internal/domain"
)

// EventType identifies the lifecycle/state events a device emits
type EventType string

const (
	// EventReady fires when the device id becomes available
	EventReady EventType = "ready"
	// EventNotReady fires when the device goes offline
	EventNotReady EventType = "not_ready"
	// EventInitializationError fires on SDK initialization failure
	EventInitializationError EventType = "initialization_error"
	// EventAuthenticationError fires on token rejection
	EventAuthenticationError EventType = "authentication_error"
	// EventAccountError fires on account-level rejection
	EventAccountError EventType = "account_error"
	// EventPlayerStateChanged fires on every playback state change
	EventPlayerStateChanged EventType = "player_state_changed"
)

// EventTypes lists every event a session registers for
var EventTypes = []EventType{
	EventReady,
	EventNotReady,
	EventInitializationError,
	EventAuthenticationError,
	EventAccountError,
	EventPlayerStateChanged,
}

// Event is the typed variant delivered to listeners. Which fields are
// populated depends on Type: DeviceID for ready/not_ready, Message for the
// error events, State for player_state_changed (nil State means idle).
type Event struct {
	Type     EventType
	DeviceID string
	Message  string
	State    *domain.PlaybackState
}

// ListenerFunc receives events for a single registered event type
type ListenerFunc func(Event)

// TokenFunc supplies the OAuth token at connect time, so the SDK can
// re-request it instead of capturing a stale copy
type TokenFunc func(ctx context.Context) (string, error)

// DeviceOptions configures a new device
type DeviceOptions struct {
	// Name is the human-readable device name shown in the provider's
	// device picker
	Name string

	// Volume is the initial volume in [0,1]
	Volume float64

	// OAuthToken is the token accessor used during connect
	OAuthToken TokenFunc
}

// Device is one remote-controllable playback endpoint.
//
//go:generate mockgen -destination=mocks/sdk_mock.go -package=mocks github.com/auroraviz/aurora/internal/sdk Device,Loader
type Device interface {
	// Connect attaches the device to the provider. It resolves to false
	// when the attempt fails without a transport error.
	Connect(ctx context.Context) (bool, error)

	// Disconnect detaches the device. Safe to call before Connect resolved.
	Disconnect() error

	// AddListener registers the listener for one event type, replacing any
	// previous listener for that type
	AddListener(t EventType, fn ListenerFunc)

	// RemoveListener unregisters the listener for one event type
	RemoveListener(t EventType)

	// Transport commands; results are not consumed
	TogglePlay(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
}

// Loader owns SDK availability and device construction
type Loader interface {
	// Load makes the SDK available. It is idempotent: if the SDK is
	// already present the call returns immediately.
	Load(ctx context.Context) error

	// NewDevice constructs a device. Load must have succeeded first.
	NewDevice(opts DeviceOptions) (Device, error)
}
