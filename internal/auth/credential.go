// Package auth covers the provider's implicit-grant flow: building the
// authorization URL, consuming the redirect fragment, and persisting the
// resulting credential.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/auroraviz/aurora/internal/domain"
)

const authorizeEndpoint = "https://accounts.spotify.com/authorize"

var (
	// ErrNoToken is returned when a redirect fragment carries no access token
	ErrNoToken = errors.New("fragment does not contain an access token")

	// ErrBadExpiry is returned when expires_in is missing or not a number
	ErrBadExpiry = errors.New("fragment does not contain a valid expires_in")
)

// AuthorizeURL builds the implicit-grant authorization URL for the
// configured client. Scopes are space-joined per the provider contract.
func AuthorizeURL(clientID, redirectURI string, scopes []string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("response_type", "token")
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", strings.Join(scopes, " "))
	return authorizeEndpoint + "?" + q.Encode()
}

// ParseFragment extracts a credential from a redirect URL fragment of the
// form "access_token=...&expires_in=3600". A leading '#' is tolerated.
func ParseFragment(fragment string, now time.Time) (*domain.Credential, error) {
	fragment = strings.TrimPrefix(fragment, "#")

	params, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, fmt.Errorf("malformed fragment: %w", err)
	}

	token := params.Get("access_token")
	if token == "" {
		return nil, ErrNoToken
	}

	seconds, err := strconv.Atoi(params.Get("expires_in"))
	if err != nil || seconds <= 0 {
		return nil, ErrBadExpiry
	}

	return &domain.Credential{
		Token:  token,
		Expiry: now.Add(time.Duration(seconds) * time.Second),
	}, nil
}

// ToToken converts a credential into the oauth2 token representation used
// by the persistent store
func ToToken(cred *domain.Credential) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: cred.Token,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	}
}

// FromToken converts a stored oauth2 token back into a credential.
// Returns nil for a nil token.
func FromToken(tok *oauth2.Token) *domain.Credential {
	if tok == nil {
		return nil
	}
	return &domain.Credential{
		Token:  tok.AccessToken,
		Expiry: tok.Expiry,
	}
}
