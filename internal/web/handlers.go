package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/embed"
	"github.com/auroraviz/aurora/internal/engine"
)

// Handlers contains the HTTP handlers for the control surface
type Handlers struct {
	logger    *zap.Logger
	orch      Orchestrator
	trackURIs []string
}

// NewHandlers creates a new Handlers instance
func NewHandlers(logger *zap.Logger, orch Orchestrator, trackURIs []string) *Handlers {
	return &Handlers{logger: logger, orch: orch, trackURIs: trackURIs}
}

// State returns the consolidated application state (GET /api/state)
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.orch.CurrentState())
}

// Login returns the authorization URL to open (POST /api/login)
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	u, err := h.orch.Login()
	if err != nil {
		if errors.Is(err, engine.ErrNotConfigured) {
			h.writeError(w, http.StatusConflict, "no client id configured")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

type fragmentRequest struct {
	Fragment string `json:"fragment"`
}

// AuthFragment consumes a redirect fragment forwarded by the callback
// page (POST /api/auth/fragment)
func (h *Handlers) AuthFragment(w http.ResponseWriter, r *http.Request) {
	var req fragmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.orch.CompleteLogin(r.Context(), req.Fragment); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListenNow switches to the embedded-player screen (POST /api/listen-now)
func (h *Handlers) ListenNow(w http.ResponseWriter, r *http.Request) {
	h.orch.ListenNow()
	w.WriteHeader(http.StatusNoContent)
}

// Back returns to the landing screen (POST /api/back)
func (h *Handlers) Back(w http.ResponseWriter, r *http.Request) {
	h.orch.Back()
	w.WriteHeader(http.StatusNoContent)
}

// Disconnect drops the credential and tears the session down
// (POST /api/disconnect)
func (h *Handlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.orch.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

// TogglePlay toggles playback (POST /api/player/toggle)
func (h *Handlers) TogglePlay(w http.ResponseWriter, r *http.Request) {
	h.orch.TogglePlay(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// NextTrack skips forward (POST /api/player/next)
func (h *Handlers) NextTrack(w http.ResponseWriter, r *http.Request) {
	h.orch.NextTrack(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// PreviousTrack skips backward (POST /api/player/previous)
func (h *Handlers) PreviousTrack(w http.ResponseWriter, r *http.Request) {
	h.orch.PreviousTrack(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Callback serves the redirect landing page (GET /callback). The access
// token arrives in the URL fragment, which never reaches the server, so
// the page forwards it over the API.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, callbackPage)
}

// EmbedPage serves the login-free embedded players for the configured
// queue (GET /embed)
func (h *Handlers) EmbedPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprint(w, embedPageHeader)
	for _, u := range embed.PlayerURLs(h.trackURIs) {
		fmt.Fprintf(w, embedFrameTemplate, html.EscapeString(u))
	}
	fmt.Fprint(w, embedPageFooter)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>Aurora Login</title></head>
<body>
<p>Completing login...</p>
<script>
var fragment = window.location.hash;
// Strip the fragment before forwarding so a refresh cannot replay it
history.replaceState(null, '', window.location.pathname);
fetch('/api/auth/fragment', {
  method: 'POST',
  headers: {'Content-Type': 'application/json'},
  body: JSON.stringify({fragment: fragment})
}).then(function (resp) {
  document.body.textContent = resp.ok
    ? 'Login complete. You can close this window.'
    : 'Login failed. Please try again.';
}).catch(function () {
  document.body.textContent = 'Login failed. Please try again.';
});
</script>
</body>
</html>
`

const embedPageHeader = `<!DOCTYPE html>
<html>
<head><title>Aurora</title></head>
<body style="background:#0a0a14;margin:0;padding:2rem">
`

const embedFrameTemplate = `<iframe src="%s" width="100%%" height="152" frameborder="0" allow="encrypted-media" style="border-radius:12px;margin-bottom:1rem"></iframe>
`

const embedPageFooter = `</body>
</html>
`
