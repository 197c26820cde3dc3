package middlewares

import (
	"errors"

	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "access_token"

// Session returns a JWT auth middleware backed by the session manager.
// It stores current_user and current_session into echo.Context.
func Session(m session.Manager) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey: m.SigningKey(),
		ContextKey: tokenContextKey,
		// EventSource clients can not set headers.
		TokenLookup: "header:Authorization:Bearer ,query:access_token",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(session.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return session.ErrExpiredAccessToken
			}
			return lferror.ErrUnauthorized.Wrap(err)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return lferror.ErrUnauthorized
			}
			claims, ok := token.Claims.(*session.AccessClaims)
			if !ok {
				return lferror.ErrUnauthorized
			}

			user, current, err := m.Authenticate(claims)
			if err != nil {
				return err
			}

			// Store current_user and current_session for handlers.
			c.Set(CurrentUserContextKey, user)
			c.Set(CurrentSessionContextKey, current)
			return next(c)
		})
	}
}
