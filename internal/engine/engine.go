// Package engine is the application orchestrator. It owns the view state
// machine, the live credential, the one-shot playback auto-start, and the
// track-feature synchronization that feeds the render loop.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/auth"
	"github.com/auroraviz/aurora/internal/domain"
	"github.com/auroraviz/aurora/internal/vis"
)

// ErrNotConfigured is returned by Login when no client id is set
var ErrNotConfigured = errors.New("no client id configured")

const defaultDisconnectDelay = 3 * time.Second

// Config is the configuration surface the orchestrator needs
type Config interface {
	domain.Config

	// Configured reports whether a client id is set
	Configured() bool
}

// featureResult carries an asynchronous feature fetch back into the loop.
// The generation stamp lets the loop drop results that resolve after the
// track has already changed.
type featureResult struct {
	gen      uint64
	trackID  string
	features *domain.AudioFeatures
}

// State is the consolidated application state exposed to the control
// surface
type State struct {
	View       domain.ViewMode       `json:"view"`
	Configured bool                  `json:"configured"`
	Player     domain.PlayerSnapshot `json:"player"`
	Features   *domain.AudioFeatures `json:"features,omitempty"`
	TrackURIs  []string              `json:"trackUris"`

	// LoginError carries only credential-level failures; other session
	// errors stay on the player screen
	LoginError string `json:"loginError,omitempty"`
}

// Engine drives the application: it consumes session snapshots, resolves
// per-track features, fires the one-shot auto-start, and reacts to
// credential-fatal errors with a delayed disconnect
type Engine struct {
	logger   *zap.Logger
	cfg      Config
	store    *auth.Store
	session  domain.Session
	features domain.FeatureSource
	starter  domain.PlaybackStarter
	inputs   *vis.Inputs

	mu              sync.Mutex
	view            domain.ViewMode
	cred            *domain.Credential
	epoch           int
	autoStarted     bool
	lastSnap        domain.PlayerSnapshot
	feat            *domain.AudioFeatures
	requestedTrack  string
	gen             uint64
	disconnectTimer *time.Timer

	featResults     chan featureResult
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	now             func() time.Time
	disconnectDelay time.Duration
}

// NewEngine wires the orchestrator. Call Start to resolve the startup
// credential and launch the event loop.
func NewEngine(
	logger *zap.Logger,
	cfg Config,
	store *auth.Store,
	session domain.Session,
	features domain.FeatureSource,
	starter domain.PlaybackStarter,
	inputs *vis.Inputs,
) *Engine {
	return &Engine{
		logger:          logger,
		cfg:             cfg,
		store:           store,
		session:         session,
		features:        features,
		starter:         starter,
		inputs:          inputs,
		view:            domain.ViewLanding,
		featResults:     make(chan featureResult, 4),
		now:             time.Now,
		disconnectDelay: defaultDisconnectDelay,
	}
}

// Start resolves the persisted credential and launches the event loop
func (e *Engine) Start(ctx context.Context) error {
	if cred := e.loadPersistedCredential(); cred != nil {
		e.logger.Info("Resuming persisted session")
		e.bindCredential(ctx, cred)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(1)
	go e.loop(loopCtx)

	e.logger.Info("Orchestrator started", zap.Bool("configured", e.cfg.Configured()))
	return nil
}

// Stop cancels the loop, any pending disconnect timer, and the session
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
		e.wg.Wait()
	}

	e.mu.Lock()
	e.cancelDisconnectTimerLocked()
	e.mu.Unlock()

	if err := e.session.Teardown(); err != nil {
		e.logger.Warn("Session teardown on stop reported errors", zap.Error(err))
	}

	e.logger.Info("Orchestrator stopped")
	return nil
}

// loadPersistedCredential returns the stored credential if it is still
// valid, clearing the store when it has expired
func (e *Engine) loadPersistedCredential() *domain.Credential {
	tok, err := e.store.Load()
	if err != nil {
		e.logger.Warn("Failed to load persisted credential", zap.Error(err))
		return nil
	}

	cred := auth.FromToken(tok)
	if cred == nil {
		return nil
	}
	if !cred.Valid(e.now()) {
		e.logger.Info("Persisted credential expired, clearing")
		if err := e.store.Clear(); err != nil {
			e.logger.Warn("Failed to clear expired credential", zap.Error(err))
		}
		return nil
	}
	return cred
}

// Login returns the authorization URL for the configured client
func (e *Engine) Login() (string, error) {
	if !e.cfg.Configured() {
		e.logger.Warn("Login requested without a configured client id")
		return "", ErrNotConfigured
	}
	return auth.AuthorizeURL(e.cfg.ClientID(), e.cfg.RedirectURI(), e.cfg.Scopes()), nil
}

// CompleteLogin consumes a redirect fragment, persists the credential and
// binds the player session. The fragment is single-use: a second call with
// the same fragment simply rebinds the same credential.
func (e *Engine) CompleteLogin(ctx context.Context, fragment string) error {
	cred, err := auth.ParseFragment(fragment, e.now())
	if err != nil {
		e.logger.Warn("Redirect fragment rejected", zap.Error(err))
		return err
	}

	if err := e.store.Save(auth.ToToken(cred)); err != nil {
		e.logger.Warn("Failed to persist credential", zap.Error(err))
	}

	e.logger.Info("Login complete", zap.Time("expiry", cred.Expiry))
	e.bindCredential(ctx, cred)
	return nil
}

// ListenNow switches to the login-free embedded-player screen
func (e *Engine) ListenNow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = domain.ViewEmbed
}

// Back returns to the landing screen from the embedded-player screen
func (e *Engine) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = domain.ViewLanding
}

// Disconnect drops the credential, clears persistence, tears the session
// down and returns to the landing screen
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.cred = nil
	e.epoch++
	e.autoStarted = false
	e.view = domain.ViewLanding
	e.feat = nil
	e.requestedTrack = ""
	e.gen++
	e.cancelDisconnectTimerLocked()
	e.mu.Unlock()

	if err := e.store.Clear(); err != nil {
		e.logger.Warn("Failed to clear persisted credential", zap.Error(err))
	}
	if err := e.session.Teardown(); err != nil {
		e.logger.Warn("Session teardown reported errors", zap.Error(err))
	}

	e.inputs.Set(false, nil)
	e.logger.Info("Disconnected")
}

// TogglePlay forwards the transport command to the bound session
func (e *Engine) TogglePlay(ctx context.Context) { e.session.TogglePlay(ctx) }

// NextTrack forwards the transport command to the bound session
func (e *Engine) NextTrack(ctx context.Context) { e.session.NextTrack(ctx) }

// PreviousTrack forwards the transport command to the bound session
func (e *Engine) PreviousTrack(ctx context.Context) { e.session.PreviousTrack(ctx) }

// CurrentState returns the consolidated application state
func (e *Engine) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.session.Snapshot()
	state := State{
		View:       e.view,
		Configured: e.cfg.Configured(),
		Player:     snap,
		Features:   e.feat,
		TrackURIs:  e.cfg.TrackURIs(),
	}
	if snap.ErrKind == domain.ErrAuthentication || snap.ErrKind == domain.ErrAccount {
		state.LoginError = snap.Err
	}
	return state
}

// bindCredential installs a new live credential and rebinds the session.
// Each bind opens a fresh epoch so the auto-start fires once per
// credential, including across reconnects with a new token.
func (e *Engine) bindCredential(ctx context.Context, cred *domain.Credential) {
	e.mu.Lock()
	e.cred = cred
	e.epoch++
	e.autoStarted = false
	e.view = domain.ViewPremium
	e.cancelDisconnectTimerLocked()
	e.mu.Unlock()

	if err := e.session.Bind(ctx, cred); err != nil {
		e.logger.Error("Session bind failed", zap.Error(err))
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case snap := <-e.session.Updates():
			e.handleSnapshot(ctx, snap)

		case res := <-e.featResults:
			e.handleFeatureResult(res)
		}
	}
}

// handleSnapshot reacts to one consolidated session snapshot: transport
// auto-start, feature synchronization, render inputs and fatal errors
func (e *Engine) handleSnapshot(ctx context.Context, snap domain.PlayerSnapshot) {
	e.mu.Lock()
	e.lastSnap = snap

	e.maybeAutoStartLocked(ctx, snap)
	e.syncFeaturesLocked(ctx, snap)

	switch snap.ErrKind {
	case domain.ErrAuthentication, domain.ErrAccount:
		e.scheduleDisconnectLocked(snap.ErrKind)
	case domain.ErrNone:
		e.cancelDisconnectTimerLocked()
	}

	playing := snap.Active && !snap.Paused
	feat := e.feat
	e.mu.Unlock()

	e.inputs.Set(playing, feat)
}

// maybeAutoStartLocked fires the one-shot playback kick for the current
// credential epoch. The flag flips before the command is issued so a
// burst of ready snapshots cannot double-fire.
func (e *Engine) maybeAutoStartLocked(ctx context.Context, snap domain.PlayerSnapshot) {
	if e.autoStarted || e.cred == nil || snap.DeviceID == "" || snap.Active {
		return
	}
	if e.view != domain.ViewPremium {
		return
	}
	if !e.cred.Valid(e.now()) {
		return
	}

	e.autoStarted = true
	token := e.cred.Token
	deviceID := snap.DeviceID
	uris := e.cfg.TrackURIs()

	e.logger.Info("Auto-starting playback", zap.String("deviceId", deviceID))
	go e.starter.Start(ctx, token, deviceID, uris)
}

// syncFeaturesLocked keeps the resolved features aligned with the
// current track. Each new track bumps the generation so a fetch that
// resolves late is dropped instead of overwriting the current track's
// features.
func (e *Engine) syncFeaturesLocked(ctx context.Context, snap domain.PlayerSnapshot) {
	trackID := snap.TrackID()

	if trackID == "" {
		if e.feat != nil || e.requestedTrack != "" {
			e.feat = nil
			e.requestedTrack = ""
			e.gen++
		}
		return
	}

	if trackID == e.requestedTrack {
		return
	}

	e.requestedTrack = trackID
	e.gen++
	gen := e.gen

	var token string
	if e.cred != nil {
		token = e.cred.Token
	}

	go func() {
		feat := e.features.Fetch(ctx, trackID, token)
		select {
		case e.featResults <- featureResult{gen: gen, trackID: trackID, features: feat}:
		case <-ctx.Done():
		}
	}()
}

// handleFeatureResult installs a resolved fetch unless it has gone stale
func (e *Engine) handleFeatureResult(res featureResult) {
	e.mu.Lock()

	if res.gen != e.gen {
		e.mu.Unlock()
		e.logger.Debug("Dropping stale feature result", zap.String("trackId", res.trackID))
		return
	}

	e.feat = res.features
	playing := e.lastSnap.Active && !e.lastSnap.Paused
	feat := e.feat
	e.mu.Unlock()

	e.inputs.Set(playing, feat)
}

// scheduleDisconnectLocked arms the delayed disconnect for a
// credential-fatal error. The delay lets the error message stay visible
// before the session is dropped; a recovery cancels the timer.
func (e *Engine) scheduleDisconnectLocked(kind domain.ErrorKind) {
	if e.disconnectTimer != nil {
		return
	}

	e.logger.Warn("Credential-fatal error, scheduling disconnect",
		zap.String("kind", string(kind)),
		zap.Duration("delay", e.disconnectDelay))

	var t *time.Timer
	t = time.AfterFunc(e.disconnectDelay, func() {
		e.mu.Lock()
		// A cancellation that raced the firing wins: a timer that is no
		// longer the armed one must not disconnect
		if e.disconnectTimer != t {
			e.mu.Unlock()
			return
		}
		e.disconnectTimer = nil
		e.mu.Unlock()
		e.Disconnect()
	})
	e.disconnectTimer = t
}

func (e *Engine) cancelDisconnectTimerLocked() {
	if e.disconnectTimer != nil {
		e.disconnectTimer.Stop()
		e.disconnectTimer = nil
	}
}
