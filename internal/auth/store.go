package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	configDirName = "aurora"
	tokenFileName = "token.json"
)

// record is the on-disk shape: the raw token and its absolute expiry as an
// epoch-millisecond string
type record struct {
	AccessToken string `json:"access_token"`
	ExpiryMs    string `json:"expiry_ms"`
}

// Store handles persistent storage of the access credential
type Store struct {
	path string
}

// DefaultStore returns a Store using the default location:
// ~/.config/aurora/token.json
func DefaultStore() (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}
	return &Store{path: filepath.Join(configDir, configDirName, tokenFileName)}, nil
}

// NewStore creates a Store with a custom path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path where the credential is stored
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted credential from disk.
// Returns (nil, nil) if nothing is persisted.
func (s *Store) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	ms, err := strconv.ParseInt(rec.ExpiryMs, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing stored expiry: %w", err)
	}

	return &oauth2.Token{
		AccessToken: rec.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.UnixMilli(ms),
	}, nil
}

// Save writes the credential to disk, creating the parent directory if
// needed
func (s *Store) Save(tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("cannot save nil token")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	rec := record{
		AccessToken: tok.AccessToken,
		ExpiryMs:    strconv.FormatInt(tok.Expiry.UnixMilli(), 10),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Clear removes the persisted credential.
// Returns nil if nothing was persisted.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
