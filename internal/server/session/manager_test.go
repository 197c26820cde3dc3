package session_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, refreshTTL time.Duration) (database.Client, session.Manager, *model.User) {
	filename := filepath.Join(t.TempDir(), "lostfound.db")
	require.NoError(t, database.StormInit(filename))
	db, err := database.StormOpen(filename)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user := &model.User{Email: "jane@campus.edu", Role: model.RoleUser}
	require.NoError(t, db.Save(user))

	return db, session.NewManager(db, []byte("secret"), time.Hour, refreshTTL), user
}

func parse(t *testing.T, m session.Manager, token string) *session.AccessClaims {
	claims := new(session.AccessClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.SigningKey(), nil
	})
	require.NoError(t, err)
	return claims
}

func TestSignAndAuthenticate(t *testing.T) {
	_, m, user := setup(t, 24*time.Hour)

	s, err := m.Create(user, "test-agent")
	require.NoError(t, err)
	assert.Len(t, s.RefreshToken, 48)
	assert.Equal(t, "test-agent", s.UserAgent)

	token, err := m.Sign(s)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpireAt, 5*time.Second)

	claims := parse(t, m, token.AccessToken)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, s.ID, claims.SessionID)

	u, current, err := m.Authenticate(claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, u.ID)
	assert.Equal(t, s.ID, current.ID)
}

func TestAuthenticateRevoked(t *testing.T) {
	db, m, user := setup(t, 24*time.Hour)

	s, err := m.Create(user, "")
	require.NoError(t, err)
	token, err := m.Sign(s)
	require.NoError(t, err)
	claims := parse(t, m, token.AccessToken)

	// Password changed after the token was issued.
	user.PasswordUpdatedAt = time.Now().Add(time.Minute).Unix()
	require.NoError(t, db.Save(user))
	_, _, err = m.Authenticate(claims)
	assert.True(t, errors.Is(err, session.ErrRevokedToken))

	user.PasswordUpdatedAt = 0
	require.NoError(t, db.Save(user))
	require.NoError(t, m.Revoke(s))
	_, _, err = m.Authenticate(claims)
	assert.True(t, errors.Is(err, session.ErrRevokedToken))

	claims.Issuer = "someone"
	_, _, err = m.Authenticate(claims)
	assert.True(t, errors.Is(err, lferror.ErrUnauthorized))
}

func TestRefresh(t *testing.T) {
	_, m, user := setup(t, 24*time.Hour)

	s, err := m.Create(user, "")
	require.NoError(t, err)
	previous := s.RefreshToken

	refreshed, err := m.Refresh(previous)
	require.NoError(t, err)
	assert.Equal(t, s.ID, refreshed.ID)
	assert.NotEqual(t, previous, refreshed.RefreshToken)

	_, err = m.Refresh(previous)
	assert.True(t, errors.Is(err, session.ErrInvalidRefreshToken))
}

func TestRefreshExpired(t *testing.T) {
	_, m, user := setup(t, -time.Minute)

	s, err := m.Create(user, "")
	require.NoError(t, err)

	_, err = m.Refresh(s.RefreshToken)
	assert.True(t, errors.Is(err, session.ErrExpiredRefreshToken))
}

func TestRevokeOthers(t *testing.T) {
	db, m, user := setup(t, 24*time.Hour)

	keep, err := m.Create(user, "laptop")
	require.NoError(t, err)
	_, err = m.Create(user, "phone")
	require.NoError(t, err)

	require.NoError(t, m.RevokeOthers(user, keep))

	sessions, err := db.FindSessionsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, keep.ID, sessions[0].ID)
}
