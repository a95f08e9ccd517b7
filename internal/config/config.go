package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultOutputDir  = "/tmp/aurora"
	defaultListenAddr = "127.0.0.1:8721"
	defaultFrameRate  = 30
)

// defaultTrackURIs is the fixed play queue used when no override is set
var defaultTrackURIs = []string{
	"spotify:track:1XdAuz3tbAVECAj8GgpVhc",
}

// scopes are the OAuth permissions the playback device needs. All of them
// are required for remote playback to work.
var scopes = []string{
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// AppConfig holds application configuration
type AppConfig struct {
	logger      *zap.Logger
	clientID    string
	redirectURI string
	trackURIs   []string
	outputDir   string
	listenAddr  string
	frameRate   int
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	clientID := os.Getenv("AURORA_CLIENT_ID")

	listenAddr := os.Getenv("AURORA_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	redirectURI := os.Getenv("AURORA_REDIRECT_URI")
	if redirectURI == "" {
		// Must match the redirect URI registered in the provider dashboard
		redirectURI = "http://" + listenAddr + "/callback"
	}

	trackURIs := defaultTrackURIs
	if raw := os.Getenv("AURORA_TRACK_URIS"); raw != "" {
		trackURIs = nil
		for _, uri := range strings.Split(raw, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				trackURIs = append(trackURIs, uri)
			}
		}
	}

	outputDir := os.Getenv("AURORA_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	outputDir = os.ExpandEnv(outputDir)
	if len(outputDir) > 0 && outputDir[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			outputDir = filepath.Join(home, outputDir[1:])
		}
	}

	frameRate := defaultFrameRate
	if raw := os.Getenv("AURORA_FRAME_RATE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			frameRate = n
		} else {
			logger.Warn("Ignoring invalid AURORA_FRAME_RATE", zap.String("value", raw))
		}
	}

	logger.Info("Configuration loaded",
		zap.Bool("clientConfigured", clientID != ""),
		zap.String("redirectURI", redirectURI),
		zap.Int("tracks", len(trackURIs)),
		zap.String("outputDir", outputDir),
		zap.String("listenAddr", listenAddr))

	return &AppConfig{
		logger:      logger,
		clientID:    clientID,
		redirectURI: redirectURI,
		trackURIs:   trackURIs,
		outputDir:   outputDir,
		listenAddr:  listenAddr,
		frameRate:   frameRate,
	}
}

// ClientID returns the provider application client id ("" when unset)
func (c *AppConfig) ClientID() string {
	return c.clientID
}

// Configured reports whether a client id has been set; login is blocked
// without one
func (c *AppConfig) Configured() bool {
	return c.clientID != ""
}

// RedirectURI returns the OAuth redirect URI
func (c *AppConfig) RedirectURI() string {
	return c.redirectURI
}

// TrackURIs returns the fixed ordered play queue
func (c *AppConfig) TrackURIs() []string {
	return c.trackURIs
}

// Scopes returns the OAuth scope list
func (c *AppConfig) Scopes() []string {
	return scopes
}

// OutputDir returns the directory rendered frames are published to
func (c *AppConfig) OutputDir() string {
	return c.outputDir
}

// ListenAddr returns the control-surface listen address
func (c *AppConfig) ListenAddr() string {
	return c.listenAddr
}

// FrameRate returns the visualizer frames per second
func (c *AppConfig) FrameRate() int {
	return c.frameRate
}
