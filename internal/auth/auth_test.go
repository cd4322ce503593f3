package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"spendwise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *clock, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	c := &clock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(store, WithBcryptCost(bcrypt.MinCost), WithClock(c.Now), WithTTL(time.Hour))
	return svc, c, store
}

func TestRegisterPolicy(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		wantErr  error
	}{
		{"short username", " al ", "secret1", "secret1", ErrUsernameTooShort},
		{"short password", "alice", "12345", "12345", ErrPasswordTooShort},
		{"mismatch", "alice", "secret1", "secret2", ErrPasswordMismatch},
		{"long password", "alice", strings.Repeat("p", 73), strings.Repeat("p", 73), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsPolicy(err))
		})
	}

	keys, err := store.Keys(ctx, storage.UserPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  alice ", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.Register(ctx, "alice", "another1", "another1")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	raw, ok, err := store.Get(ctx, storage.UserKey("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "secret1")

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", strings.Repeat("s", 100))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.NotEmpty(t, sess.Token)

	found, ok, err := svc.Lookup(ctx, " alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, found.ID)
	_, ok, err = svc.Lookup(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionLifecycle(t *testing.T) {
	svc, c, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "secret1")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	resumed, err := svc.Resume(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess, resumed)

	svc.Logout(ctx, sess.Token)
	_, err = svc.Resume(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
	svc.Logout(ctx, sess.Token)

	sess, err = svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	c.now = c.now.Add(2 * time.Hour)
	_, err = svc.Resume(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCleanExpired(t *testing.T) {
	svc, c, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "secret1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, "alice", "secret1")
		require.NoError(t, err)
	}

	assert.Zero(t, svc.CleanExpired())
	c.now = c.now.Add(time.Hour)
	assert.Equal(t, 3, svc.CleanExpired())
}

func TestSubscribe(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	events, cancel := svc.Subscribe()

	_, err := svc.Register(ctx, "alice", "secret1", "secret1")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	svc.Logout(ctx, sess.Token)

	got := []EventKind{(<-events).Kind, (<-events).Kind}
	assert.Equal(t, []EventKind{EventLogin, EventLogout}, got)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open, "cancel must close the stream")

	// publishing after cancel must not panic
	_, err = svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
}
