// Package storage keeps client state on disk and reads interactive forms.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// DefaultSessionFile is the session file name used when none is configured.
const DefaultSessionFile = "session.json"

// SessionFile stores the signed-in token and identity so the user stays
// signed in across runs.
type SessionFile struct {
	Path string
	mu   sync.Mutex
}

type sessionData struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// NewSessionFile returns a SessionFile at path.
func NewSessionFile(path string) *SessionFile {
	if path == "" {
		path = DefaultSessionFile
	}
	return &SessionFile{Path: path}
}

// Load returns the stored session. ok is false when no session is stored.
func (f *SessionFile) Load() (token string, identity models.Identity, ok bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", models.Identity{}, false, nil
		}
		return "", models.Identity{}, false, fmt.Errorf("read session: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal(b, &data); err != nil {
		return "", models.Identity{}, false, fmt.Errorf("decode session: %w", err)
	}
	if data.Token == "" || data.Identity.ID == "" {
		return "", models.Identity{}, false, nil
	}
	return data.Token, data.Identity, true, nil
}

// Save writes the session with owner-only permissions.
func (f *SessionFile) Save(token string, identity models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.Marshal(sessionData{Token: token, Identity: identity})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

// Clear removes the stored session.
func (f *SessionFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
