package server

import (
	"net/http"

	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/server/serializer"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/labstack/echo/v4"
)

type (
	// auth contains all authentication handlers.
	auth struct {
		users    *service.UserService
		sessions session.Manager
	}

	refreshParams struct {
		RefreshToken string `json:"refresh_token"`
	}
)

///// Register
////
//

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := h.users.Register(params)
	if err != nil {
		return err
	}

	return h.signIn(c, http.StatusCreated, user)
}

///// Login
////
//

// Login handler is used to login the user.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := h.users.Login(params)
	if err != nil {
		return err
	}

	return h.signIn(c, http.StatusOK, user)
}

///// Refresh
////
//

// Refresh obtains a new access token and rotates the refresh token.
func (h *auth) Refresh(c echo.Context) error {
	var params refreshParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	if params.RefreshToken == "" {
		return lferror.Invalid("refresh_token is required.")
	}

	current, err := h.sessions.Refresh(params.RefreshToken)
	if err != nil {
		return err
	}

	token, err := h.sessions.Sign(current)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session": serializer.Session(current, token),
	})
}

///// Sign out
////
//

// SignOut terminates the current session.
func (h *auth) SignOut(c echo.Context) error {
	if err := h.sessions.Revoke(currentSession(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

///// Update password
////
//

// UpdatePassword changes the password of the current user and closes their other sessions.
func (h *auth) UpdatePassword(c echo.Context) error {
	var params service.UpdatePasswordParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := h.users.UpdatePassword(currentUser(c), params)
	if err != nil {
		return err
	}

	current := currentSession(c)
	if err = h.sessions.RevokeOthers(user, current); err != nil {
		return err
	}

	// The current access token is revoked by the password change.
	token, err := h.sessions.Sign(current)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Auth(user, current, token))
}

///// Profile
////
//

// Profile renders the current user.
func (h *auth) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user": serializer.User(currentUser(c)),
	})
}

// UpdateProfile updates the profile of the current user.
// Empty fields are left untouched.
func (h *auth) UpdateProfile(c echo.Context) error {
	var params service.ProfileParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": serializer.User(user),
	})
}

func (h *auth) signIn(c echo.Context, status int, user *model.User) error {
	current, err := h.sessions.Create(user, c.Request().UserAgent())
	if err != nil {
		return err
	}

	token, err := h.sessions.Sign(current)
	if err != nil {
		return err
	}

	return c.JSON(status, serializer.Auth(user, current, token))
}
