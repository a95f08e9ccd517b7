package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/auth"
	"github.com/auroraviz/aurora/internal/domain"
	"github.com/auroraviz/aurora/internal/vis"
)

type fakeConfig struct {
	clientID string
	uris     []string
}

func (c *fakeConfig) ClientID() string    { return c.clientID }
func (c *fakeConfig) Configured() bool    { return c.clientID != "" }
func (c *fakeConfig) RedirectURI() string { return "http://127.0.0.1:8721/callback" }
func (c *fakeConfig) TrackURIs() []string { return c.uris }
func (c *fakeConfig) Scopes() []string    { return []string{"streaming"} }
func (c *fakeConfig) OutputDir() string   { return "/tmp/aurora-test" }

type fakeSession struct {
	mu        sync.Mutex
	updates   chan domain.PlayerSnapshot
	snap      domain.PlayerSnapshot
	bound     []*domain.Credential
	teardowns int
	toggles   int
	nexts     int
	prevs     int
}

func newFakeSession() *fakeSession {
	return &fakeSession{updates: make(chan domain.PlayerSnapshot, 10)}
}

func (s *fakeSession) Bind(ctx context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = append(s.bound, cred)
	return nil
}

func (s *fakeSession) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns++
	return nil
}

func (s *fakeSession) Snapshot() domain.PlayerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *fakeSession) Updates() <-chan domain.PlayerSnapshot { return s.updates }

func (s *fakeSession) TogglePlay(ctx context.Context)    { s.mu.Lock(); s.toggles++; s.mu.Unlock() }
func (s *fakeSession) NextTrack(ctx context.Context)     { s.mu.Lock(); s.nexts++; s.mu.Unlock() }
func (s *fakeSession) PreviousTrack(ctx context.Context) { s.mu.Lock(); s.prevs++; s.mu.Unlock() }

// emit pushes a snapshot into the updates stream
func (s *fakeSession) emit(snap domain.PlayerSnapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.updates <- snap
}

func (s *fakeSession) teardownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teardowns
}

func (s *fakeSession) boundCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bound)
}

type fakeFeatures struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*domain.AudioFeatures
	block   map[string]chan struct{}
}

func newFakeFeatures() *fakeFeatures {
	return &fakeFeatures{
		results: make(map[string]*domain.AudioFeatures),
		block:   make(map[string]chan struct{}),
	}
}

func (f *fakeFeatures) Fetch(ctx context.Context, trackID, token string) *domain.AudioFeatures {
	f.mu.Lock()
	f.calls = append(f.calls, trackID)
	gate := f.block[trackID]
	res := f.results[trackID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res
}

type fakeStarter struct {
	mu     sync.Mutex
	starts []string
}

func (f *fakeStarter) Start(ctx context.Context, token, deviceID string, trackURIs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, deviceID)
}

func (f *fakeStarter) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

// waitFor polls until cond returns true or the deadline passes
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never satisfied: %s", msg)
}

type harness struct {
	engine   *Engine
	session  *fakeSession
	features *fakeFeatures
	starter  *fakeStarter
	inputs   *vis.Inputs
	store    *auth.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	session := newFakeSession()
	features := newFakeFeatures()
	starter := &fakeStarter{}
	inputs := vis.NewInputs()
	store := auth.NewStore(filepath.Join(t.TempDir(), "token.json"))

	cfg := &fakeConfig{clientID: "client-1", uris: []string{"spotify:track:abc"}}
	eng := NewEngine(zap.NewNop(), cfg, store, session, features, starter, inputs)
	eng.disconnectDelay = 25 * time.Millisecond

	return &harness{engine: eng, session: session, features: features, starter: starter, inputs: inputs, store: store}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.engine.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = h.engine.Stop(context.Background()) })
}

func validFragment() string {
	return "#access_token=tok-1&token_type=Bearer&expires_in=3600"
}

func readySnapshot(deviceID string) domain.PlayerSnapshot {
	return domain.PlayerSnapshot{DeviceID: deviceID, Status: fmt.Sprintf("Ready. Select %q", "x")}
}

func playingSnapshot(trackID string) domain.PlayerSnapshot {
	return domain.PlayerSnapshot{
		Active:   true,
		DeviceID: "dev-1",
		Track:    &domain.Track{ID: trackID, Name: "Track " + trackID},
	}
}

func TestStartResumesPersistedCredential(t *testing.T) {
	h := newHarness(t)

	cred := &domain.Credential{Token: "persisted", Expiry: time.Now().Add(time.Hour)}
	if err := h.store.Save(auth.ToToken(cred)); err != nil {
		t.Fatal(err)
	}

	h.start(t)

	if h.session.boundCount() != 1 {
		t.Fatalf("expected one session bind, got %d", h.session.boundCount())
	}
	if got := h.engine.CurrentState().View; got != domain.ViewPremium {
		t.Errorf("view = %q, want %q", got, domain.ViewPremium)
	}
}

func TestStartClearsExpiredCredential(t *testing.T) {
	h := newHarness(t)

	cred := &domain.Credential{Token: "stale", Expiry: time.Now().Add(-time.Hour)}
	if err := h.store.Save(auth.ToToken(cred)); err != nil {
		t.Fatal(err)
	}

	h.start(t)

	if h.session.boundCount() != 0 {
		t.Fatalf("expected no session bind, got %d", h.session.boundCount())
	}
	if got := h.engine.CurrentState().View; got != domain.ViewLanding {
		t.Errorf("view = %q, want %q", got, domain.ViewLanding)
	}
	tok, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Error("expired credential should have been cleared from the store")
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	u, err := h.engine.Login()
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !strings.Contains(u, "client_id=client-1") {
		t.Errorf("authorize URL missing client id: %s", u)
	}
	if !strings.Contains(u, "response_type=token") {
		t.Errorf("authorize URL missing response type: %s", u)
	}
}

func TestLoginUnconfigured(t *testing.T) {
	session := newFakeSession()
	store := auth.NewStore(filepath.Join(t.TempDir(), "token.json"))
	eng := NewEngine(zap.NewNop(), &fakeConfig{}, store, session, newFakeFeatures(), &fakeStarter{}, vis.NewInputs())

	if _, err := eng.Login(); err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCompleteLoginBindsAndPersists(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatalf("CompleteLogin failed: %v", err)
	}

	if h.session.boundCount() != 1 {
		t.Fatalf("expected one session bind, got %d", h.session.boundCount())
	}
	tok, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok == nil || tok.AccessToken != "tok-1" {
		t.Errorf("persisted token = %+v, want tok-1", tok)
	}
	if got := h.engine.CurrentState().View; got != domain.ViewPremium {
		t.Errorf("view = %q, want %q", got, domain.ViewPremium)
	}
}

func TestCompleteLoginRejectsBadFragment(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), "#state=only"); err == nil {
		t.Fatal("expected an error for a fragment without a token")
	}
	if h.session.boundCount() != 0 {
		t.Errorf("bad fragment must not bind a session")
	}
}

func TestAutoStartFiresOncePerCredential(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	h.session.emit(readySnapshot("dev-1"))
	waitFor(t, func() bool { return h.starter.startCount() == 1 }, "auto-start fired")

	// More inactive ready snapshots must not re-fire within the epoch
	h.session.emit(readySnapshot("dev-1"))
	h.session.emit(readySnapshot("dev-1"))
	time.Sleep(30 * time.Millisecond)
	if got := h.starter.startCount(); got != 1 {
		t.Fatalf("auto-start fired %d times, want 1", got)
	}

	// A fresh credential opens a new epoch and replays the auto-start
	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	h.session.emit(readySnapshot("dev-2"))
	waitFor(t, func() bool { return h.starter.startCount() == 2 }, "auto-start replayed for new credential")
}

func TestAutoStartSkippedWhileActive(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	h.session.emit(playingSnapshot("t1"))
	time.Sleep(30 * time.Millisecond)
	if got := h.starter.startCount(); got != 0 {
		t.Fatalf("auto-start fired %d times for an active player, want 0", got)
	}
}

func TestFeatureSyncFollowsTrack(t *testing.T) {
	h := newHarness(t)
	h.features.results["t1"] = &domain.AudioFeatures{Tempo: 128}
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	h.session.emit(playingSnapshot("t1"))
	waitFor(t, func() bool {
		_, feat := h.inputs.Get()
		return feat != nil && feat.Tempo == 128
	}, "features resolved for current track")

	playing, _ := h.inputs.Get()
	if !playing {
		t.Error("inputs should report playing for an active unpaused snapshot")
	}
}

func TestStaleFeatureResultDropped(t *testing.T) {
	h := newHarness(t)
	gateA := make(chan struct{})
	h.features.block["a"] = gateA
	h.features.results["a"] = &domain.AudioFeatures{Tempo: 90}
	h.features.results["b"] = &domain.AudioFeatures{Tempo: 150}
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	// Track a's fetch hangs; track b arrives and resolves first
	h.session.emit(playingSnapshot("a"))
	h.session.emit(playingSnapshot("b"))
	waitFor(t, func() bool {
		_, feat := h.inputs.Get()
		return feat != nil && feat.Tempo == 150
	}, "current track's features installed")

	// Releasing the stale fetch must not overwrite the current features
	close(gateA)
	time.Sleep(30 * time.Millisecond)
	_, feat := h.inputs.Get()
	if feat == nil || feat.Tempo != 150 {
		t.Fatalf("stale fetch overwrote features: %+v", feat)
	}
}

func TestIdleClearsFeatures(t *testing.T) {
	h := newHarness(t)
	h.features.results["t1"] = &domain.AudioFeatures{Tempo: 128}
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	h.session.emit(playingSnapshot("t1"))
	waitFor(t, func() bool {
		_, feat := h.inputs.Get()
		return feat != nil
	}, "features resolved")

	h.session.emit(domain.PlayerSnapshot{DeviceID: "dev-1", Status: "Player is idle. Play music on Spotify."})
	waitFor(t, func() bool {
		playing, feat := h.inputs.Get()
		return !playing && feat == nil
	}, "idle snapshot cleared features")
}

func TestAuthenticationErrorDisconnectsAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	before := h.session.teardownCount()

	h.session.emit(domain.PlayerSnapshot{
		Err:     "Authentication Failed: bad token. Please use a new token.",
		ErrKind: domain.ErrAuthentication,
	})

	waitFor(t, func() bool { return h.session.teardownCount() > before }, "delayed disconnect fired")
	waitFor(t, func() bool { return h.engine.CurrentState().View == domain.ViewLanding }, "returned to landing")

	tok, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Error("credential should have been cleared from the store")
	}
}

func TestDisconnectCancelledOnRecovery(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	before := h.session.teardownCount()

	h.session.emit(domain.PlayerSnapshot{
		Err:     "Authentication Failed: transient. Please use a new token.",
		ErrKind: domain.ErrAuthentication,
	})
	// Recovery before the delay elapses cancels the pending disconnect
	h.session.emit(readySnapshot("dev-1"))

	time.Sleep(60 * time.Millisecond)
	if got := h.session.teardownCount(); got != before {
		t.Fatalf("disconnect fired despite recovery (teardowns %d -> %d)", before, got)
	}
	if got := h.engine.CurrentState().View; got != domain.ViewPremium {
		t.Errorf("view = %q, want %q", got, domain.ViewPremium)
	}
}

func TestDisconnectCancelRacingFiredTimer(t *testing.T) {
	h := newHarness(t)
	h.engine.disconnectDelay = 50 * time.Millisecond
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	before := h.session.teardownCount()

	h.session.emit(domain.PlayerSnapshot{
		Err:     "Authentication Failed: transient. Please use a new token.",
		ErrKind: domain.ErrAuthentication,
	})
	waitFor(t, func() bool {
		h.engine.mu.Lock()
		defer h.engine.mu.Unlock()
		return h.engine.disconnectTimer != nil
	}, "timer armed")

	// Hold the lock past the delay so the fired callback blocks on it,
	// then cancel while it is still blocked. The stale callback must not
	// disconnect once the lock is released.
	h.engine.mu.Lock()
	time.Sleep(80 * time.Millisecond)
	h.engine.cancelDisconnectTimerLocked()
	h.engine.mu.Unlock()

	time.Sleep(40 * time.Millisecond)
	if got := h.session.teardownCount(); got != before {
		t.Fatalf("cancelled timer still disconnected (teardowns %d -> %d)", before, got)
	}
	if got := h.engine.CurrentState().View; got != domain.ViewPremium {
		t.Errorf("view = %q, want %q", got, domain.ViewPremium)
	}
}

func TestListenNowAndBack(t *testing.T) {
	h := newHarness(t)

	h.engine.ListenNow()
	if got := h.engine.CurrentState().View; got != domain.ViewEmbed {
		t.Errorf("view = %q, want %q", got, domain.ViewEmbed)
	}

	h.engine.Back()
	if got := h.engine.CurrentState().View; got != domain.ViewLanding {
		t.Errorf("view = %q, want %q", got, domain.ViewLanding)
	}
}

func TestTransportDelegation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.TogglePlay(ctx)
	h.engine.NextTrack(ctx)
	h.engine.NextTrack(ctx)
	h.engine.PreviousTrack(ctx)

	h.session.mu.Lock()
	defer h.session.mu.Unlock()
	if h.session.toggles != 1 || h.session.nexts != 2 || h.session.prevs != 1 {
		t.Errorf("transport counts = %d/%d/%d, want 1/2/1",
			h.session.toggles, h.session.nexts, h.session.prevs)
	}
}

func TestAutoStartSkippedOutsidePlayerView(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	h.engine.ListenNow()

	h.session.emit(readySnapshot("dev-1"))
	time.Sleep(30 * time.Millisecond)
	if got := h.starter.startCount(); got != 0 {
		t.Fatalf("auto-start fired %d times on the embed screen, want 0", got)
	}
}

func TestLoginErrorSurfacesOnlyCredentialFailures(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}

	h.session.emit(domain.PlayerSnapshot{
		Err:     "Failed to connect. Check internet or Premium status.",
		ErrKind: domain.ErrConnection,
	})
	waitFor(t, func() bool { return h.engine.CurrentState().Player.ErrKind == domain.ErrConnection }, "snapshot delivered")
	if got := h.engine.CurrentState().LoginError; got != "" {
		t.Errorf("connection error leaked onto the login screen: %q", got)
	}

	h.session.emit(domain.PlayerSnapshot{
		Err:     "Account Error: bad plan. Spotify Premium is required.",
		ErrKind: domain.ErrAccount,
	})
	waitFor(t, func() bool { return h.engine.CurrentState().LoginError != "" }, "account error surfaced")
}

func TestDisconnectResetsState(t *testing.T) {
	h := newHarness(t)
	h.features.results["t1"] = &domain.AudioFeatures{Tempo: 128}
	h.start(t)

	if err := h.engine.CompleteLogin(context.Background(), validFragment()); err != nil {
		t.Fatal(err)
	}
	h.session.emit(playingSnapshot("t1"))
	waitFor(t, func() bool {
		_, feat := h.inputs.Get()
		return feat != nil
	}, "features resolved")

	h.engine.Disconnect()

	state := h.engine.CurrentState()
	if state.View != domain.ViewLanding {
		t.Errorf("view = %q, want %q", state.View, domain.ViewLanding)
	}
	if state.Features != nil {
		t.Error("features should be cleared on disconnect")
	}
	playing, feat := h.inputs.Get()
	if playing || feat != nil {
		t.Error("render inputs should be reset on disconnect")
	}
	tok, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Error("persisted credential should be cleared")
	}
}
