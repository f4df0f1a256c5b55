package session_test

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/models/user"
	"taskManager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = &user.User{ID: 1, Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
var bob = &user.User{ID: 2, Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"}

// TestSession тестирует жизненный цикл сессии
func TestSession(t *testing.T) {
	t.Run("success - fresh session is anonymous", func(t *testing.T) {
		sess := session.New()
		_, ok := sess.Current()
		assert.False(t, ok)
	})

	t.Run("success - nil session is anonymous", func(t *testing.T) {
		var sess *session.Session
		_, ok := sess.Current()
		assert.False(t, ok)
	})

	t.Run("success - start, replace and end", func(t *testing.T) {
		sess := session.New()

		sess.Start(alice)
		identity, ok := sess.Current()
		require.True(t, ok)
		assert.Equal(t, user.Identity{ID: 1, Name: "Alice", Email: "alice@example.com"}, identity)

		sess.Start(bob)
		identity, ok = sess.Current()
		require.True(t, ok)
		assert.Equal(t, "bob@example.com", identity.Email)

		sess.End()
		_, ok = sess.Current()
		assert.False(t, ok)

		// повторное завершение ничего не ломает
		sess.End()
		_, ok = sess.Current()
		assert.False(t, ok)
	})

	t.Run("success - touch moves last seen", func(t *testing.T) {
		sess := session.New()
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		sess.Touch(at)
		assert.Equal(t, at, sess.LastSeen())
	})
}

// TestRegistry тестирует реестр сессий по токенам
func TestRegistry(t *testing.T) {
	t.Run("success - open and lookup", func(t *testing.T) {
		reg := session.NewRegistry(time.Hour)

		token, sess := reg.Open(alice)
		require.NotEmpty(t, token)

		found, ok := reg.Lookup(token)
		require.True(t, ok)
		assert.Same(t, sess, found)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("success - tokens are distinct", func(t *testing.T) {
		reg := session.NewRegistry(time.Hour)
		first, _ := reg.Open(alice)
		second, _ := reg.Open(alice)
		assert.NotEqual(t, first, second)
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("error - unknown token", func(t *testing.T) {
		reg := session.NewRegistry(time.Hour)
		_, ok := reg.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("success - close ends session", func(t *testing.T) {
		reg := session.NewRegistry(time.Hour)
		token, sess := reg.Open(alice)

		reg.Close(token)

		_, ok := reg.Lookup(token)
		assert.False(t, ok)
		_, active := sess.Current()
		assert.False(t, active)
		assert.Zero(t, reg.Len())

		reg.Close(token)
	})

	t.Run("error - ended session is not returned", func(t *testing.T) {
		reg := session.NewRegistry(time.Hour)
		token, sess := reg.Open(alice)
		sess.End()

		_, ok := reg.Lookup(token)
		assert.False(t, ok)
	})

	t.Run("error - idle session expires without sweep", func(t *testing.T) {
		reg := session.NewRegistry(10 * time.Minute)
		token, sess := reg.Open(alice)
		sess.Touch(time.Now().Add(-time.Hour))

		_, ok := reg.Lookup(token)
		assert.False(t, ok)
		assert.Zero(t, reg.Len())

		_, active := sess.Current()
		assert.False(t, active)
	})

	t.Run("success - lookup within idle timeout keeps session", func(t *testing.T) {
		reg := session.NewRegistry(10 * time.Minute)
		token, sess := reg.Open(alice)
		sess.Touch(time.Now().Add(-time.Minute))

		found, ok := reg.Lookup(token)
		require.True(t, ok)
		assert.Same(t, sess, found)
		assert.WithinDuration(t, time.Now(), sess.LastSeen(), time.Second)
	})
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	reg := session.NewRegistry(10 * time.Minute)

	idleToken, idle := reg.Open(alice)
	activeToken, active := reg.Open(bob)
	endedToken, ended := reg.Open(bob)

	now := time.Now()
	idle.Touch(now.Add(-time.Hour))
	active.Touch(now.Add(-time.Minute))
	ended.End()

	removed, err := reg.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Lookup(activeToken)
	assert.True(t, ok)
	_, ok = reg.Lookup(idleToken)
	assert.False(t, ok)
	_, ok = reg.Lookup(endedToken)
	assert.False(t, ok)

	_, stillActive := idle.Current()
	assert.False(t, stillActive)
	assert.Equal(t, "sessions", reg.Name())
}
