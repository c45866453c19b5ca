package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"assettrack/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore_RememberMePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewFileTokenStore(path)

	require.NoError(t, store.Save(&entity.Session{Token: "abc", RememberMe: true}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(sessionFileMode), info.Mode().Perm())

	// A fresh store (new process) reads the file.
	reloaded, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "abc", reloaded.Token)
	assert.True(t, reloaded.RememberMe)
}

func TestFileTokenStore_SessionOnlyStaysInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileTokenStore(path)

	require.NoError(t, store.Save(&entity.Session{Token: "remembered", RememberMe: true}))
	require.NoError(t, store.Save(&entity.Session{Token: "volatile"}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "session-only login must remove the remembered token")

	session, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "volatile", session.Token)

	other, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestFileTokenStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileTokenStore(path)
	require.NoError(t, store.Save(&entity.Session{Token: "abc", RememberMe: true}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	session, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestFileTokenStore_RejectsEmptyToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "session.yaml"))
	assert.Error(t, store.Save(&entity.Session{}))
}

func TestJWTInspector_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	inspector := NewTokenInspector()

	got, err := inspector.ExpiresAt(signed)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, exp.Equal(*got))

	opaque, err := inspector.ExpiresAt("opaque-session-token")
	require.NoError(t, err)
	assert.Nil(t, opaque)

	_, err = inspector.ExpiresAt("a.b.c")
	assert.Error(t, err)
}
