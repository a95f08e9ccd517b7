// Package embed derives the login-free embedded-player URLs from the
// configured play queue
package embed

import "strings"

const playerBaseURL = "https://open.spotify.com/embed/track/"

// TrackIDs extracts the track identifiers from provider URIs of the form
// "spotify:track:ID". URIs with any other shape are skipped.
func TrackIDs(uris []string) []string {
	ids := make([]string, 0, len(uris))
	for _, uri := range uris {
		parts := strings.Split(uri, ":")
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		ids = append(ids, parts[2])
	}
	return ids
}

// PlayerURLs maps the configured play queue to embedded-player URLs
func PlayerURLs(uris []string) []string {
	ids := TrackIDs(uris)
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = playerBaseURL + id
	}
	return urls
}
