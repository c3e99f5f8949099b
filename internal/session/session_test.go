// ABOUTME: Tests for session stores and token claim parsing
// ABOUTME: Covers file persistence, permissions, clearing and JWT inspection

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionName(t *testing.T) {
	assert.Equal(t, "User", Session{}.Name())
	assert.Equal(t, "Bob", Session{DisplayName: "Bob"}.Name())
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(Session{AccessToken: "a", RefreshToken: "r", DisplayName: "Bob"})

	require.NoError(t, m.SetAccess("a2"))
	s, err := m.Get()
	require.NoError(t, err)
	assert.Equal(t, "a2", s.AccessToken)
	assert.Equal(t, "r", s.RefreshToken)
	assert.True(t, s.SignedIn())

	require.NoError(t, m.Clear())
	s, _ = m.Get()
	assert.False(t, s.SignedIn())
	assert.Empty(t, s.RefreshToken)
}

func TestFileStore_GetMissingFile(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	s, err := fs.Get()
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)
}

func TestFileStore_SetAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	fs := NewFileStore(dir)

	want := Session{AccessToken: "a", RefreshToken: "r", DisplayName: "Bob"}
	require.NoError(t, fs.Set(want))

	got, err := NewFileStore(dir).Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SetAccessKeepsRefresh(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	require.NoError(t, fs.Set(Session{AccessToken: "old", RefreshToken: "r", DisplayName: "Bob"}))

	require.NoError(t, fs.SetAccess("new"))

	s, err := fs.Get()
	require.NoError(t, err)
	assert.Equal(t, "new", s.AccessToken)
	assert.Equal(t, "r", s.RefreshToken)
	assert.Equal(t, "Bob", s.DisplayName)
}

func TestFileStore_Clear(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	require.NoError(t, fs.Set(Session{AccessToken: "a", RefreshToken: "r"}))

	require.NoError(t, fs.Clear())
	_, err := os.Stat(fs.Path())
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, fs.Clear())
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0600))

	s, err := NewFileStore(dir).Get()
	require.NoError(t, err)
	assert.False(t, s.SignedIn())
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{
		"sub":   "123",
		"email": "bob@example.com",
		"name":  "Bob Smith",
		"exp":   exp.Unix(),
	})

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "123", c.Subject)
	assert.Equal(t, "bob@example.com", c.Email)
	assert.Equal(t, "Bob Smith", c.Name)
	assert.True(t, c.ExpiresAt.Equal(exp))
}

func TestParseClaims_Malformed(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestExpiresIn(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok := signedToken(t, jwt.MapClaims{"exp": now.Add(5 * time.Minute).Unix()})

	d, err := ExpiresIn(tok, now)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = ExpiresIn(signedToken(t, jwt.MapClaims{"sub": "x"}), now)
	assert.ErrorIs(t, err, ErrNoExpiry)
}
