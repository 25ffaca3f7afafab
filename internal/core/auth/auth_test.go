package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcal/internal/core/kv"
	"github.com/colonyops/taskcal/internal/store/jsonfile"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"ok", "ana@example.com", "abcd", false},
		{"no email", "", "abcd", true},
		{"blank email", "   ", "abcd", true},
		{"short password", "ana@example.com", "abc", true},
		{"email without domain", "ana", "secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.email, tt.password)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "ana", NameFromEmail("ana@example.com"))
	assert.Equal(t, "bob", NameFromEmail("bob"))
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *jsonfile.Store) {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), jsonfile.FileName))
	require.NoError(t, err)

	s := NewService(store, "taskcal", ttl)
	s.now = func() time.Time { return time.UnixMilli(1710496800000) }
	return s, store
}

func TestService_LoginLogout(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t, 0)

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	u, err := s.Login(ctx, " ana@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, User{ID: "1710496800000", Name: "ana", Email: "ana@example.com"}, u)

	var stored User
	require.NoError(t, store.Get(ctx, "taskcal:user", &stored))
	assert.Equal(t, u, stored)

	got, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	_, err = s.Current(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestService_LoginRejected(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t, 0)

	_, err := s.Login(ctx, "ana@example.com", "123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	var stored User
	require.ErrorIs(t, store.Get(ctx, "taskcal:user", &stored), kv.ErrNotFound, "a rejected login stores nothing")
}

func TestService_SessionTTL(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Nanosecond)

	_, err := s.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = s.Current(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestService_CorruptUserIsSignedOut(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t, 0)

	require.NoError(t, store.Set(ctx, "taskcal:user", []int{1}))

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}
