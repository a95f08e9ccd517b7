// Package spotify talks to the provider's Web API: reading per-track
// acoustic features and issuing the one-shot playback command.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
)

const defaultAPIBase = "https://api.spotify.com/v1"

// Client is the Web API client. It implements domain.FeatureSource and
// domain.PlaybackStarter; per the error policy neither surface propagates
// transport failures to callers.
type Client struct {
	logger  *zap.Logger
	client  *http.Client
	apiBase string
}

// NewClient creates a new Web API client
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second, // Essential to prevent blocking the daemon
		},
		apiBase: defaultAPIBase,
	}
}

// featuresResponse is the subset of the audio-features payload we consume
type featuresResponse struct {
	Tempo            float64 `json:"tempo"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
}

// Fetch retrieves the acoustic features for a track. Missing inputs,
// transport failures and non-success responses all resolve to nil; the
// caller owns any re-fetch policy.
func (c *Client) Fetch(ctx context.Context, trackID, token string) *domain.AudioFeatures {
	if trackID == "" || token == "" {
		return nil
	}

	endpoint := c.apiBase + "/audio-features/" + url.PathEscape(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("Failed to build features request", zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Error fetching audio features", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Failed to fetch audio features",
			zap.String("trackId", trackID),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	var body featuresResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error("Failed to decode audio features", zap.Error(err))
		return nil
	}

	c.logger.Debug("Audio features fetched",
		zap.String("trackId", trackID),
		zap.Float64("tempo", body.Tempo),
		zap.Float64("energy", body.Energy))

	return &domain.AudioFeatures{
		Tempo:            body.Tempo,
		Energy:           body.Energy,
		Danceability:     body.Danceability,
		Valence:          body.Valence,
		Instrumentalness: body.Instrumentalness,
		Liveness:         body.Liveness,
	}
}

// Start issues the "start playback" command targeting the given device
// with the track list as the full play queue. Fire-and-forget: outcomes
// are only observable in logs, and calling it twice sends two commands.
func (c *Client) Start(ctx context.Context, token, deviceID string, trackURIs []string) {
	payload, err := json.Marshal(map[string][]string{"uris": trackURIs})
	if err != nil {
		c.logger.Error("Failed to encode playback command", zap.Error(err))
		return
	}

	endpoint := c.apiBase + "/me/player/play?device_id=" + url.QueryEscape(deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("Failed to build playback request", zap.Error(err))
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Error starting playback", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Failed to start playback",
			zap.String("deviceId", deviceID),
			zap.Int("status", resp.StatusCode))
		return
	}

	c.logger.Info("Playback command sent",
		zap.String("deviceId", deviceID),
		zap.Strings("uris", trackURIs))
}
