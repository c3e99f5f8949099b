// ABOUTME: File-backed session store in the XDG config directory
// ABOUTME: Persists access, refresh and display name as a private JSON file

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// AppName names the per-user config and state directories
const AppName = "news-portal"

const sessionFileName = "session.json"

// FileStore persists the session to disk
type FileStore struct {
	configDir string
	mu        sync.Mutex
}

// NewFileStore creates a store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/news-portal
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Path returns the location of the session file
func (f *FileStore) Path() string {
	return filepath.Join(f.configDir, sessionFileName)
}

// Get implements Store.
// A missing or unreadable file is treated as signed out.
func (f *FileStore) Get() (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Set implements Store
func (f *FileStore) Set(s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(s)
}

// SetAccess implements Store
func (f *FileStore) SetAccess(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return err
	}
	s.AccessToken = token
	return f.save(s)
}

// Clear implements Store
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (f *FileStore) load() (Session, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupt file, start signed out
		return Session{}, nil
	}
	return s, nil
}

func (f *FileStore) save(s Session) error {
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	// Replace via rename: readers see the old file or the new one
	tmp := f.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, f.Path()); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}
