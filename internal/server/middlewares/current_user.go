package middlewares

import (
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/labstack/echo/v4"
)

const (
	// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
	CurrentUserContextKey = "current_user"
	// CurrentSessionContextKey is the key to retrieve the current_session from echo.Context.
	CurrentSessionContextKey = "current_session"
)

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(CurrentUserContextKey).(*model.User)
	return user
}

// CurrentSession returns the session of the authenticated user, or nil.
func CurrentSession(c echo.Context) *model.Session {
	session, _ := c.Get(CurrentSessionContextKey).(*model.Session)
	return session
}

// RequireAdmin rejects the requests of users that are not administrators.
// It must be used after the Session middleware.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CurrentUser(c).IsAdmin() {
			return lferror.ErrAdminRequired
		}
		return next(c)
	}
}
