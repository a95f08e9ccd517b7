// Package session owns the lifecycle of one playback device: SDK loading,
// device construction, event subscription, and teardown. It projects the
// device's event stream into a single consolidated snapshot.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
	"github.com/auroraviz/aurora/internal/sdk"
)

const (
	defaultVolume = 0.5

	statusInitializing = "Initializing..."
	statusConnecting   = "Connecting..."
	statusOffline      = "Device offline"
	statusIdle         = "Player is idle. Play music on Spotify."
	statusDisconnected = "Disconnected"
)

// Manager is the device session manager. At most one device is bound at a
// time; binding a new credential always tears the previous device down
// first so no two devices are ever live for the same logical session.
type Manager struct {
	logger *zap.Logger
	loader sdk.Loader

	mu              sync.RWMutex
	device          sdk.Device
	snap            domain.PlayerSnapshot
	connectCancel   context.CancelFunc
	lastDropWarning time.Time

	updates chan domain.PlayerSnapshot
}

// NewManager creates a session manager on top of the given SDK loader
func NewManager(logger *zap.Logger, loader sdk.Loader) *Manager {
	return &Manager{
		logger:  logger,
		loader:  loader,
		snap:    domain.PlayerSnapshot{Status: statusInitializing},
		updates: make(chan domain.PlayerSnapshot, 10),
	}
}

// Bind tears down any prior device and constructs a new one for the given
// credential. A nil credential just tears down. Connection proceeds
// asynchronously; failures surface through the snapshot, never as panics.
func (m *Manager) Bind(ctx context.Context, cred *domain.Credential) error {
	// Strict ordering: the old device must be disconnected and its
	// listeners unregistered before the new device exists, otherwise
	// events could be delivered twice across a credential swap.
	if err := m.Teardown(); err != nil {
		m.logger.Warn("Teardown of previous device reported errors", zap.Error(err))
	}

	if cred == nil {
		return nil
	}

	if err := m.loader.Load(ctx); err != nil {
		m.setError(domain.ErrInitialization, "Initialization Failed: "+err.Error())
		return fmt.Errorf("loading playback SDK: %w", err)
	}

	// The SDK reads the token through an accessor at connect time. A
	// credential is fixed for the life of a bind (implicit grant has no
	// refresh), so the accessor serves the token captured here; a new
	// token always arrives as a new Bind.
	token := cred.Token
	name := fmt.Sprintf("Aurora Visualizer (%s)", uuid.NewString()[:8])

	dev, err := m.loader.NewDevice(sdk.DeviceOptions{
		Name:   name,
		Volume: defaultVolume,
		OAuthToken: func(ctx context.Context) (string, error) {
			return token, nil
		},
	})
	if err != nil {
		m.setError(domain.ErrInitialization, "Initialization Failed: "+err.Error())
		return fmt.Errorf("constructing device: %w", err)
	}

	dev.AddListener(sdk.EventReady, func(ev sdk.Event) {
		m.logger.Info("Device ready", zap.String("deviceId", ev.DeviceID))
		m.update(func(s *domain.PlayerSnapshot) {
			s.DeviceID = ev.DeviceID
			s.Status = fmt.Sprintf("Ready. Select %q", name)
			s.Err = ""
			s.ErrKind = domain.ErrNone
		})
	})
	dev.AddListener(sdk.EventNotReady, func(ev sdk.Event) {
		m.logger.Info("Device went offline", zap.String("deviceId", ev.DeviceID))
		m.update(func(s *domain.PlayerSnapshot) {
			s.DeviceID = ""
			s.Status = statusOffline
			s.Active = false
		})
	})
	dev.AddListener(sdk.EventInitializationError, func(ev sdk.Event) {
		m.logger.Error("Initialization error", zap.String("message", ev.Message))
		m.setError(domain.ErrInitialization, "Initialization Failed: "+ev.Message)
	})
	dev.AddListener(sdk.EventAuthenticationError, func(ev sdk.Event) {
		m.logger.Error("Authentication error", zap.String("message", ev.Message))
		m.setError(domain.ErrAuthentication,
			fmt.Sprintf("Authentication Failed: %s. Please use a new token.", ev.Message))
	})
	dev.AddListener(sdk.EventAccountError, func(ev sdk.Event) {
		m.logger.Error("Account error", zap.String("message", ev.Message))
		m.setError(domain.ErrAccount,
			fmt.Sprintf("Account Error: %s. Spotify Premium is required.", ev.Message))
	})
	dev.AddListener(sdk.EventPlayerStateChanged, func(ev sdk.Event) {
		m.update(func(s *domain.PlayerSnapshot) {
			if ev.State == nil {
				// The snapshot is replaced wholesale: idle means no track
				s.Active = false
				s.Track = nil
				s.Status = statusIdle
				return
			}
			s.Active = true
			s.Paused = ev.State.Paused
			s.Track = ev.State.Track
		})
	})

	connectCtx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	m.device = dev
	m.connectCancel = cancel
	m.snap = domain.PlayerSnapshot{Status: statusConnecting}
	m.mu.Unlock()
	m.publish()

	go func() {
		ok, err := dev.Connect(connectCtx)
		if err != nil {
			m.logger.Error("Device connect failed", zap.Error(err))
		}
		if !ok {
			// No retry here: reconnection is a session-level decision
			m.setError(domain.ErrConnection, "Failed to connect. Check internet or Premium status.")
		}
	}()

	return nil
}

// Teardown unregisters all listeners, disconnects the device and clears
// the binding. Safe to call even if a connect attempt never completed.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	dev := m.device
	cancel := m.connectCancel
	m.device = nil
	m.connectCancel = nil
	m.mu.Unlock()

	if dev == nil {
		return nil
	}

	if cancel != nil {
		cancel()
	}

	// Listeners go first so a disconnecting device cannot publish into a
	// session that no longer owns it
	for _, t := range sdk.EventTypes {
		dev.RemoveListener(t)
	}

	var errs error
	errs = multierr.Append(errs, dev.Disconnect())

	m.mu.Lock()
	m.snap = domain.PlayerSnapshot{Status: statusDisconnected}
	m.mu.Unlock()
	m.publish()

	m.logger.Info("Device session torn down")
	return errs
}

// Snapshot returns the current consolidated device projection
func (m *Manager) Snapshot() domain.PlayerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Updates emits a snapshot after every projection change
func (m *Manager) Updates() <-chan domain.PlayerSnapshot {
	return m.updates
}

// TogglePlay toggles playback. No-op while no device is bound.
func (m *Manager) TogglePlay(ctx context.Context) {
	if dev := m.boundDevice(); dev != nil {
		if err := dev.TogglePlay(ctx); err != nil {
			m.logger.Warn("Toggle play failed", zap.Error(err))
		}
	}
}

// NextTrack skips forward. No-op while no device is bound.
func (m *Manager) NextTrack(ctx context.Context) {
	if dev := m.boundDevice(); dev != nil {
		if err := dev.NextTrack(ctx); err != nil {
			m.logger.Warn("Next track failed", zap.Error(err))
		}
	}
}

// PreviousTrack skips backward. No-op while no device is bound.
func (m *Manager) PreviousTrack(ctx context.Context) {
	if dev := m.boundDevice(); dev != nil {
		if err := dev.PreviousTrack(ctx); err != nil {
			m.logger.Warn("Previous track failed", zap.Error(err))
		}
	}
}

func (m *Manager) boundDevice() sdk.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.device
}

// update mutates the snapshot under lock and publishes the result
func (m *Manager) update(fn func(*domain.PlayerSnapshot)) {
	m.mu.Lock()
	fn(&m.snap)
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) setError(kind domain.ErrorKind, msg string) {
	m.update(func(s *domain.PlayerSnapshot) {
		s.Err = msg
		s.ErrKind = kind
	})
}

// publish delivers the current snapshot without blocking; a slow consumer
// drops intermediate snapshots, which is fine because each snapshot is a
// complete replacement
func (m *Manager) publish() {
	m.mu.RLock()
	snap := m.snap
	m.mu.RUnlock()

	select {
	case m.updates <- snap:
	default:
		m.logDropWarning()
	}
}

// logDropWarning is rate-limited to avoid log spam during event bursts
func (m *Manager) logDropWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(m.lastDropWarning) >= warningInterval {
		m.logger.Warn("Updates channel full, dropping snapshot (consumer may be slow)")
		m.lastDropWarning = now
	}
}
