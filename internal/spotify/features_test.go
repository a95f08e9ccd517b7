package spotify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(zap.NewNop())
	c.apiBase = srv.URL
	return c, srv
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		trackID    string
		token      string
		status     int
		body       string
		wantCalls  int
		wantResult bool
	}{
		{
			name:       "Success",
			trackID:    "track-1",
			token:      "tok",
			status:     http.StatusOK,
			body:       `{"tempo":124.5,"energy":0.8,"danceability":0.7,"valence":0.6,"instrumentalness":0.1,"liveness":0.2}`,
			wantCalls:  1,
			wantResult: true,
		},
		{
			name:      "Empty track id - no network call",
			trackID:   "",
			token:     "tok",
			wantCalls: 0,
		},
		{
			name:      "Empty token - no network call",
			trackID:   "track-1",
			token:     "",
			wantCalls: 0,
		},
		{
			name:      "Non-success status",
			trackID:   "track-1",
			token:     "tok",
			status:    http.StatusForbidden,
			body:      `{"error":{"message":"nope"}}`,
			wantCalls: 1,
		},
		{
			name:      "Malformed body",
			trackID:   "track-1",
			token:     "tok",
			status:    http.StatusOK,
			body:      `not json`,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var gotPath, gotAuth string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			features := c.Fetch(context.Background(), tt.trackID, tt.token)

			if calls != tt.wantCalls {
				t.Errorf("calls: want %d, got %d", tt.wantCalls, calls)
			}
			if tt.wantResult {
				if features == nil {
					t.Fatal("expected features, got nil")
				}
				if features.Tempo != 124.5 || features.Energy != 0.8 {
					t.Errorf("unexpected features: %+v", features)
				}
				if gotPath != "/audio-features/track-1" {
					t.Errorf("unexpected path: %s", gotPath)
				}
				if gotAuth != "Bearer tok" {
					t.Errorf("unexpected auth header: %s", gotAuth)
				}
			} else if features != nil {
				t.Errorf("expected nil features, got %+v", features)
			}
		})
	}
}

func TestFetch_TransportError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Force a network error

	if features := c.Fetch(context.Background(), "track-1", "tok"); features != nil {
		t.Errorf("expected nil on transport error, got %+v", features)
	}
}

func TestStart(t *testing.T) {
	var gotMethod, gotDevice, gotAuth string
	var gotBody map[string][]string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotDevice = r.URL.Query().Get("device_id")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	uris := []string{"spotify:track:a", "spotify:track:b"}
	c.Start(context.Background(), "tok", "device-9", uris)

	if gotMethod != http.MethodPut {
		t.Errorf("method: want PUT, got %s", gotMethod)
	}
	if gotDevice != "device-9" {
		t.Errorf("device_id: want device-9, got %s", gotDevice)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth header: got %s", gotAuth)
	}
	if len(gotBody["uris"]) != 2 || gotBody["uris"][0] != "spotify:track:a" {
		t.Errorf("unexpected body: %v", gotBody)
	}
}

func TestStart_EscapesDeviceID(t *testing.T) {
	var gotRawQuery, gotDevice string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		gotDevice = r.URL.Query().Get("device_id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c.Start(context.Background(), "tok", ":1.42 aurora&co", nil)

	if gotDevice != ":1.42 aurora&co" {
		t.Errorf("device_id did not round-trip: got %q", gotDevice)
	}
	if strings.Contains(gotRawQuery, " ") || strings.Contains(gotRawQuery, "&co") {
		t.Errorf("device_id not escaped in query: %q", gotRawQuery)
	}
}

func TestStart_FailuresAreSwallowed(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"message":"Device not found"}}`)
	}))
	defer srv.Close()

	// Must not panic or surface anything; outcome is log-only
	c.Start(context.Background(), "tok", "gone", []string{"spotify:track:a"})

	srv.Close()
	c.Start(context.Background(), "tok", "gone", []string{"spotify:track:a"})
}
