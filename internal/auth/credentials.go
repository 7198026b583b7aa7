// Package auth persists the backend bearer credential on disk.
//
// The token is stored under the todoflow home directory and injected
// explicitly into the API client as an oauth2.TokenSource; nothing reads
// it ambiently.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// ErrNoCredential is returned when no token has been saved yet.
var ErrNoCredential = errors.New("auth: not logged in")

const tokenFile = "token.json"

// Store reads and writes the saved bearer token.
type Store struct {
	dir string
}

// NewStore creates a credential store rooted at the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the token file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, tokenFile)
}

// Save writes the token with owner-only permissions.
func (s *Store) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return os.WriteFile(s.Path(), data, 0o600)
}

// Load reads the saved token. Returns ErrNoCredential if none exists.
func (s *Store) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredential
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoCredential
	}
	return &tok, nil
}

// Clear removes the saved token. Removing a missing token is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TokenSource returns a source that reads the token from disk on each
// call, so a re-login is picked up without restarting.
func (s *Store) TokenSource() oauth2.TokenSource {
	return fileTokenSource{store: s}
}

type fileTokenSource struct {
	store *Store
}

func (f fileTokenSource) Token() (*oauth2.Token, error) {
	return f.store.Load()
}
