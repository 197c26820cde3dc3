// Package session issues and validates the credentials of signed-in users.
//
// A sign in creates a Session record holding a long lived refresh token.
// Requests are authenticated with short lived JWT access tokens bound to that session.
package session

import (
	"net/http"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Issuer is the issuer of the access tokens.
const Issuer = "lostfound"

// Authentication errors.
var (
	ErrExpiredAccessToken  = lferror.NewWithKind(lferror.KindUnauthorized, 498, "expired-access-token", "The provided access token has expired.")
	ErrExpiredRefreshToken = lferror.NewWithKind(lferror.KindUnauthorized, http.StatusBadRequest, "expired-refresh-token", "The refresh token has expired.")
	ErrInvalidRefreshToken = lferror.NewWithKind(lferror.KindUnauthorized, http.StatusBadRequest, "invalid-refresh-token", "The refresh token is not valid.")
	ErrRevokedToken        = lferror.NewWithKind(lferror.KindUnauthorized, http.StatusUnauthorized, "invalid-auth", "Revoked token.")
)

type (
	// AccessClaims are the claims carried by an access token.
	AccessClaims struct {
		jwt.RegisteredClaims
		SessionID string `json:"sid"`
	}

	// A Token is a signed access token.
	Token struct {
		AccessToken string
		ExpireAt    time.Time
	}

	// A Manager manages sessions.
	Manager interface {
		SigningKey() []byte
		// Create opens a new session for the given user.
		Create(user *model.User, userAgent string) (*model.Session, error)
		// Sign returns a new access token for the given session.
		Sign(session *model.Session) (*Token, error)
		// Authenticate returns the user and session of valid access token claims.
		Authenticate(claims *AccessClaims) (*model.User, *model.Session, error)
		// Refresh rotates the refresh token of the session it belongs to.
		Refresh(refreshToken string) (*model.Session, error)
		// Revoke closes the given session.
		Revoke(session *model.Session) error
		// RevokeOthers closes all the sessions of the user but the given one.
		RevokeOthers(user *model.User, keep *model.Session) error
	}

	manager struct {
		db         database.Client
		signingKey []byte
		// Session params
		accessTokenExpirationTime  time.Duration
		refreshTokenExpirationTime time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(db database.Client, signingKey []byte, accessTokenExpirationTime, refreshTokenExpirationTime time.Duration) Manager {
	return &manager{
		db:                         db,
		signingKey:                 signingKey,
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
	}
}

func (m *manager) SigningKey() []byte {
	return m.signingKey
}

func (m *manager) Create(user *model.User, userAgent string) (*model.Session, error) {
	session := &model.Session{
		UserID:       user.ID,
		UserAgent:    userAgent,
		ExpireAt:     time.Now().Add(m.refreshTokenExpirationTime).UTC(),
		RefreshToken: SecureToken(48),
	}

	if err := m.db.Save(session); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	return session, nil
}

func (m *manager) Sign(session *model.Session) (*Token, error) {
	now := time.Now().UTC()
	expireAt := now.Add(m.accessTokenExpirationTime)

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
		},
		SessionID: session.ID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not sign access token")
	}

	return &Token{
		AccessToken: token,
		ExpireAt:    expireAt,
	}, nil
}

func (m *manager) Authenticate(claims *AccessClaims) (*model.User, *model.Session, error) {
	if claims.Issuer != Issuer || claims.IssuedAt == nil {
		return nil, nil, lferror.ErrUnauthorized
	}

	session, err := m.db.FindSession(claims.SessionID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, ErrRevokedToken
		}
		return nil, nil, lferror.StoreRead(err)
	}
	if session.UserID != claims.Subject || m.isSessionExpired(session) {
		return nil, nil, ErrRevokedToken
	}

	user, err := m.db.FindUser(claims.Subject)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, lferror.ErrUnauthorized
		}
		return nil, nil, lferror.StoreRead(err)
	}

	// Check if password has changed since token was generated.
	if claims.IssuedAt.Unix() < user.PasswordUpdatedAt {
		return nil, nil, ErrRevokedToken
	}

	return user, session, nil
}

func (m *manager) Refresh(refreshToken string) (*model.Session, error) {
	session, err := m.db.FindSessionByRefreshToken(refreshToken)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, lferror.StoreRead(err)
	}
	if !SecureCompare(session.RefreshToken, refreshToken) {
		return nil, ErrInvalidRefreshToken
	}
	if m.isSessionExpired(session) {
		return nil, ErrExpiredRefreshToken
	}

	session.RefreshToken = SecureToken(48)
	session.ExpireAt = time.Now().Add(m.refreshTokenExpirationTime).UTC()
	if err = m.db.Save(session); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	return session, nil
}

func (m *manager) Revoke(session *model.Session) error {
	if err := m.db.Delete(session); err != nil {
		return lferror.StoreWrite(err)
	}
	return nil
}

func (m *manager) RevokeOthers(user *model.User, keep *model.Session) error {
	sessions, err := m.db.FindSessionsByUserID(user.ID)
	if err != nil {
		return lferror.StoreRead(err)
	}

	for _, session := range sessions {
		if keep != nil && session.ID == keep.ID {
			continue
		}
		if err = m.db.Delete(session); err != nil {
			return lferror.StoreWrite(err)
		}
	}
	return nil
}

func (m *manager) isSessionExpired(session *model.Session) bool {
	return session.ExpireAt.Before(time.Now())
}
