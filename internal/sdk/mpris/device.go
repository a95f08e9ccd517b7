//go:build linux
// +build linux

// Package mpris implements the playback SDK boundary on top of the desktop
// Spotify client's MPRIS interface. The desktop client is the playback
// device: its unique bus name serves as the device id, PropertiesChanged
// signals become player_state_changed events, and transport commands map
// onto MPRIS player methods.
package mpris

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
	"github.com/auroraviz/aurora/internal/sdk"
)

const (
	playerBusName    = "org.mpris.MediaPlayer2.spotify"
	playerObjectPath = "/org/mpris/MediaPlayer2"
	playerInterface  = "org.mpris.MediaPlayer2.Player"
)

// Loader connects to the session bus on first use and hands out devices
// bound to that connection
type Loader struct {
	logger  *zap.Logger
	mu      sync.Mutex
	conn    DBusClient
	connect func() (DBusClient, error) // swappable in tests
}

// NewLoader creates an SDK loader backed by the D-Bus session bus
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		logger: logger,
		connect: func() (DBusClient, error) {
			return NewStdDBusClient()
		},
	}
}

// Load establishes the session bus connection. Subsequent calls return
// immediately once a connection is held.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return nil
	}

	conn, err := l.connect()
	if err != nil {
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	select {
	case <-ctx.Done():
		if cerr := conn.Close(); cerr != nil {
			l.logger.Warn("Failed to close D-Bus connection", zap.Error(cerr))
		}
		return ctx.Err()
	default:
	}

	l.conn = conn
	l.logger.Info("Playback SDK loaded (session bus connected)")
	return nil
}

// NewDevice constructs a device bound to the loaded bus connection
func (l *Loader) NewDevice(opts sdk.DeviceOptions) (sdk.Device, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil, fmt.Errorf("SDK not loaded")
	}

	return &Device{
		logger:    l.logger,
		conn:      l.conn,
		opts:      opts,
		listeners: make(map[sdk.EventType]sdk.ListenerFunc),
	}, nil
}

// Device is one attachment to the desktop player
type Device struct {
	logger *zap.Logger
	conn   DBusClient
	opts   sdk.DeviceOptions

	mu        sync.RWMutex
	listeners map[sdk.EventType]sdk.ListenerFunc
	deviceID  string // unique bus name of the player, "" when detached
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Connect attaches to the desktop player. Resolves to false when the
// player is not on the bus.
func (d *Device) Connect(ctx context.Context) (bool, error) {
	if d.opts.OAuthToken != nil {
		if _, err := d.opts.OAuthToken(ctx); err != nil {
			d.emit(sdk.Event{
				Type:    sdk.EventAuthenticationError,
				Message: err.Error(),
			})
			return false, nil
		}
	}

	names, err := d.conn.ListNames()
	if err != nil {
		return false, fmt.Errorf("failed to list bus names: %w", err)
	}

	found := false
	for _, name := range names {
		if name == playerBusName {
			found = true
			break
		}
	}
	if !found {
		d.logger.Warn("Desktop player not found on session bus",
			zap.String("wanted", playerBusName))
		return false, nil
	}

	owner, err := d.conn.GetNameOwner(playerBusName)
	if err != nil {
		return false, fmt.Errorf("failed to resolve player owner: %w", err)
	}

	if err := d.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(playerObjectPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return false, fmt.Errorf("failed to add match signal: %w", err)
	}
	if err := d.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		d.logger.Warn("Failed to watch player lifecycle", zap.Error(err))
		// Non-fatal, continue without offline detection
	}

	monitorCtx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	d.deviceID = owner
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go d.monitorSignals(monitorCtx)

	d.logger.Info("Device connected",
		zap.String("name", d.opts.Name),
		zap.String("deviceId", owner))

	d.emit(sdk.Event{Type: sdk.EventReady, DeviceID: owner})

	// Seed the projection with the player's current state
	if state, err := d.fetchState(); err != nil {
		d.logger.Warn("Failed to fetch initial player state", zap.Error(err))
	} else {
		d.emit(sdk.Event{Type: sdk.EventPlayerStateChanged, State: state})
	}

	return true, nil
}

// Disconnect detaches from the player. Safe to call even if Connect never
// completed.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.deviceID = ""
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		d.wg.Wait()
	}

	d.logger.Debug("Device disconnected", zap.String("name", d.opts.Name))
	return nil
}

// AddListener registers the listener for one event type
func (d *Device) AddListener(t sdk.EventType, fn sdk.ListenerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[t] = fn
}

// RemoveListener unregisters the listener for one event type
func (d *Device) RemoveListener(t sdk.EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, t)
}

// TogglePlay toggles between play and pause
func (d *Device) TogglePlay(ctx context.Context) error {
	return d.playerCall("PlayPause")
}

// NextTrack skips to the next track
func (d *Device) NextTrack(ctx context.Context) error {
	return d.playerCall("Next")
}

// PreviousTrack skips to the previous track
func (d *Device) PreviousTrack(ctx context.Context) error {
	return d.playerCall("Previous")
}

func (d *Device) playerCall(method string) error {
	d.mu.RLock()
	attached := d.deviceID != ""
	d.mu.RUnlock()
	if !attached {
		return fmt.Errorf("device not connected")
	}
	return d.conn.CallPlayer(playerBusName, playerObjectPath, playerInterface+"."+method)
}

// emit delivers an event to the registered listener for its type, if any
func (d *Device) emit(ev sdk.Event) {
	d.mu.RLock()
	fn := d.listeners[ev.Type]
	d.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

func (d *Device) monitorSignals(ctx context.Context) {
	defer d.wg.Done()

	signals := make(chan *dbus.Signal, 10)
	d.conn.Signal(signals)
	defer d.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			switch sig.Name {
			case "org.freedesktop.DBus.NameOwnerChanged":
				d.handleNameOwnerChanged(sig)
			case "org.freedesktop.DBus.Properties.PropertiesChanged":
				d.handlePropertiesChanged(sig)
			}
		}
	}
}

// handleNameOwnerChanged watches for the player leaving the bus
func (d *Device) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, ok := sig.Body[0].(string)
	if !ok || name != playerBusName {
		return
	}
	newOwner, _ := sig.Body[2].(string)
	if newOwner != "" {
		return
	}

	d.mu.Lock()
	id := d.deviceID
	d.deviceID = ""
	d.mu.Unlock()

	d.logger.Info("Desktop player went offline", zap.String("deviceId", id))
	d.emit(sdk.Event{Type: sdk.EventNotReady, DeviceID: id})
}

// handlePropertiesChanged projects MPRIS property updates into a
// player_state_changed event
func (d *Device) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != playerInterface {
		return
	}

	d.mu.RLock()
	id := d.deviceID
	d.mu.RUnlock()
	if id == "" || sig.Sender != id {
		return
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	metadataVariant, hasMetadata := changedProps["Metadata"]
	statusVariant, hasStatus := changedProps["PlaybackStatus"]
	if !hasMetadata && !hasStatus {
		return
	}

	var metadata map[string]dbus.Variant
	var status string

	if hasMetadata {
		metadata, ok = metadataVariant.Value().(map[string]dbus.Variant)
		if !ok {
			d.logger.Warn("Invalid metadata format in signal, ignoring")
			return
		}
	} else if v, err := d.conn.GetProperty(playerBusName, playerObjectPath, playerInterface+".Metadata"); err == nil {
		metadata, _ = v.Value().(map[string]dbus.Variant)
	}

	if hasStatus {
		status, ok = statusVariant.Value().(string)
		if !ok {
			d.logger.Warn("Invalid playback status format in signal, ignoring")
			return
		}
	} else if v, err := d.conn.GetProperty(playerBusName, playerObjectPath, playerInterface+".PlaybackStatus"); err == nil {
		status, _ = v.Value().(string)
	}

	d.emit(sdk.Event{
		Type:  sdk.EventPlayerStateChanged,
		State: projectState(metadata, status),
	})
}

// fetchState reads the player's current metadata and status
func (d *Device) fetchState() (*domain.PlaybackState, error) {
	metaVariant, err := d.conn.GetProperty(playerBusName, playerObjectPath, playerInterface+".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}
	metadata, _ := metaVariant.Value().(map[string]dbus.Variant)

	statusVariant, err := d.conn.GetProperty(playerBusName, playerObjectPath, playerInterface+".PlaybackStatus")
	if err != nil {
		return nil, fmt.Errorf("failed to get playback status: %w", err)
	}
	status, _ := statusVariant.Value().(string)

	return projectState(metadata, status), nil
}

// projectState converts MPRIS metadata into a playback snapshot.
// A stopped player or empty metadata projects to nil (idle).
func projectState(metadata map[string]dbus.Variant, status string) *domain.PlaybackState {
	if metadata == nil || status == "" || status == "Stopped" {
		return nil
	}

	track := &domain.Track{}

	if v, ok := metadata["mpris:trackid"]; ok {
		track.ID = trackIDFromPath(variantString(v))
	}
	if v, ok := metadata["xesam:title"]; ok {
		track.Name = variantString(v)
	}
	if v, ok := metadata["xesam:album"]; ok {
		track.AlbumName = variantString(v)
	}
	if v, ok := metadata["mpris:artUrl"]; ok {
		track.AlbumArtURL = variantString(v)
	}
	if v, ok := metadata["xesam:artist"]; ok {
		switch artists := v.Value().(type) {
		case []string:
			track.Artists = artists
		case string:
			track.Artists = []string{artists}
		}
	}
	if track.ID != "" {
		track.URI = "spotify:track:" + track.ID
	}

	return &domain.PlaybackState{
		Paused: status != "Playing",
		Track:  track,
	}
}

// trackIDFromPath extracts the track id from an MPRIS track object path
// such as /com/spotify/track/4uLU6hMC. Object-path and string variants
// both occur in the wild.
func trackIDFromPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func variantString(v dbus.Variant) string {
	switch s := v.Value().(type) {
	case string:
		return s
	case dbus.ObjectPath:
		return string(s)
	default:
		return ""
	}
}
