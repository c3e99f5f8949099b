// ABOUTME: Session credentials shared by the HTTP client and the login flow
// ABOUTME: Defines the Store interface and an in-memory implementation

package session

import "sync"

// DefaultDisplayName is shown when the backend did not return a user name
const DefaultDisplayName = "User"

// Session holds the backend-issued credentials for the signed-in user
type Session struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	DisplayName  string `json:"user_name,omitempty"`
}

// SignedIn reports whether an access credential is present
func (s Session) SignedIn() bool {
	return s.AccessToken != ""
}

// Name returns the display name, falling back to DefaultDisplayName
func (s Session) Name() string {
	if s.DisplayName == "" {
		return DefaultDisplayName
	}
	return s.DisplayName
}

// Store is the single owner of persisted session state.
// Implementations must be safe for use from multiple goroutines.
type Store interface {
	// Get returns the stored session; the zero Session means signed out
	Get() (Session, error)
	// Set replaces the stored session
	Set(s Session) error
	// SetAccess replaces only the access credential after a refresh
	SetAccess(token string) error
	// Clear removes every stored credential
	Clear() error
}

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// NewMemoryStore creates a store seeded with s
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{session: s}
}

// Get implements Store
func (m *MemoryStore) Get() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

// Set implements Store
func (m *MemoryStore) Set(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

// SetAccess implements Store
func (m *MemoryStore) SetAccess(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.AccessToken = token
	return nil
}

// Clear implements Store
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	return nil
}
