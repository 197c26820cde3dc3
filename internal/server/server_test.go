package server_test

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/live"
	"github.com/Kapsk2801/Lost-Found/internal/logging"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/notify"
	"github.com/Kapsk2801/Lost-Found/internal/server"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/appleboy/gofight/v2"
	"github.com/labstack/echo/v4"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

type fixture struct {
	engine   *echo.Echo
	ctrl     server.IOC
	db       database.Client
	hub      *live.Hub
	sessions session.Manager
}

func setup(t *testing.T) *fixture {
	filename := filepath.Join(t.TempDir(), "lostfound.db")
	require.NoError(t, database.StormInit(filename))
	db, err := database.StormOpen(filename)
	require.NoError(t, err)

	store, err := storage.NewLocal(t.TempDir(), storage.LocalURLPrefix)
	require.NoError(t, err)

	logger := logging.Discard()
	hub := live.NewHub(db.FindItems, 10*time.Millisecond, logger)

	ctrl := server.IOC{
		Version:                    "test",
		Database:                   db,
		Logger:                     logger,
		IsAdmin:                    func(email string) bool { return email == "desk@campus.edu" },
		SigningKey:                 []byte("secret"),
		AccessTokenExpirationTime:  time.Hour,
		RefreshTokenExpirationTime: 24 * time.Hour,
		Images:                     imaging.NewProcessor(800, 80),
		Store:                      store,
		MaxUpload:                  1 << 20,
		ImagesRoot:                 store.Root(),
		Notifier:                   notify.New(db, nil, nil, logger),
		Hub:                        hub,
	}

	t.Cleanup(func() {
		hub.Close()
		db.Close()
	})

	return &fixture{
		engine:   server.EchoEngine(ctrl),
		ctrl:     ctrl,
		db:       db,
		hub:      hub,
		sessions: session.NewManager(db, ctrl.SigningKey, ctrl.AccessTokenExpirationTime, ctrl.RefreshTokenExpirationTime),
	}
}

func (f *fixture) createUser(t *testing.T, email, role string) *model.User {
	user := model.NewUser()
	user.Email = email
	user.Role = role
	user.FirstName = "First"
	user.LastName = "Last"

	var err error
	user.Password, err = argon2.GenerateFromPasswordString("password42", argon2.Default)
	require.NoError(t, err)
	require.NoError(t, f.db.Save(user))
	return user
}

func (f *fixture) createItem(t *testing.T, reportType string) *model.Item {
	item := model.NewItem(reportType)
	item.Title = "Blue wallet"
	item.Description = "Leather wallet"
	item.Category = "accessories"
	item.Location = "Library"
	require.NoError(t, f.db.Save(item))
	return item
}

// authorization returns the Authorization header of a new session of the user.
func (f *fixture) authorization(t *testing.T, user *model.User) gofight.H {
	current, err := f.sessions.Create(user, "test")
	require.NoError(t, err)
	token, err := f.sessions.Sign(current)
	require.NoError(t, err)

	return gofight.H{
		"Authorization": "Bearer " + token.AccessToken,
	}
}

func parse(t *testing.T, body string) *fastjson.Value {
	v, err := fastjson.Parse(body)
	require.NoError(t, err, body)
	return v
}

func TestRequestHome(t *testing.T) {
	f := setup(t)

	gofight.New().GET("/").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestVersion(t *testing.T) {
	f := setup(t)

	gofight.New().GET("/version").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestWithoutCredentials(t *testing.T) {
	f := setup(t)

	gofight.New().GET("/api/items").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})

	gofight.New().GET("/api/items").
		SetHeader(gofight.H{"Authorization": "Bearer not.a.token"}).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, r.Code)
		})
}

func TestRequestWithExpiredToken(t *testing.T) {
	f := setup(t)
	user := f.createUser(t, "jane@campus.edu", model.RoleUser)

	expired := session.NewManager(f.db, f.ctrl.SigningKey, -time.Minute, time.Hour)
	current, err := expired.Create(user, "")
	require.NoError(t, err)
	token, err := expired.Sign(current)
	require.NoError(t, err)

	gofight.New().GET("/api/items").
		SetHeader(gofight.H{"Authorization": "Bearer " + token.AccessToken}).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, 498, r.Code)
			assert.Equal(t, "expired-access-token", string(parse(t, r.Body.String()).GetStringBytes("error", "tag")))
		})
}

func TestRequestAdminRoute(t *testing.T) {
	f := setup(t)
	user := f.createUser(t, "jane@campus.edu", model.RoleUser)
	admin := f.createUser(t, "desk@campus.edu", model.RoleAdmin)

	gofight.New().GET("/api/admin/claims").
		SetHeader(f.authorization(t, user)).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusForbidden, r.Code)
			assert.JSONEq(t, `{"error":{"tag":"admin-required","message":"This action is restricted to administrators."}}`, r.Body.String())
		})

	gofight.New().GET("/api/admin/claims").
		SetHeader(f.authorization(t, admin)).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.JSONEq(t, `{"claims":[]}`, r.Body.String())
		})
}
