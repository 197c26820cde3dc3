// Package server exposes the lost and found workflows over HTTP.
package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/live"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/server/middlewares"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// LivePath is the route of the live feed.
const LivePath = "/api/items/live"

// An IOC is an Iversion Of Control pattern used to init the server package.
type IOC struct {
	Version        string
	Database       database.Client
	Logger         *logrus.Logger
	NoRegistration bool
	// IsAdmin tells whether a registering email is granted the admin role.
	IsAdmin func(email string) bool
	// JWT params
	SigningKey []byte
	// Session params
	AccessTokenExpirationTime  time.Duration
	RefreshTokenExpirationTime time.Duration
	// Pictures
	Images    *imaging.Processor
	Store     storage.Store
	MaxUpload int64
	// ImagesRoot is the directory served under /images, empty when pictures are stored remotely.
	ImagesRoot string
	// Collaborators
	Notifier service.Notifier
	Hub      *live.Hub
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true

	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			// Server-sent events must not be buffered.
			return strings.HasPrefix(c.Path(), LivePath)
		},
	}))

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
		Output: ctrl.Logger.Writer(),
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	if ctrl.ImagesRoot != "" {
		engine.Static(storage.LocalURLPrefix, ctrl.ImagesRoot)
	}

	////////////
	// Router //
	////////////

	var signal service.Signal = service.NopSignal{}
	if ctrl.Hub != nil {
		signal = ctrl.Hub
	}

	sessions := session.NewManager(
		ctrl.Database,
		ctrl.SigningKey,
		ctrl.AccessTokenExpirationTime,
		ctrl.RefreshTokenExpirationTime,
	)

	router := engine.Group("")
	api := router.Group("/api")
	restricted := api.Group("")
	restricted.Use(middlewares.Session(sessions))
	admin := restricted.Group("/admin")
	admin.Use(middlewares.RequireAdmin)

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	//
	// auth handlers
	//
	auth := &auth{
		users:    service.NewUser(ctrl.Database, ctrl.IsAdmin, ctrl.Logger),
		sessions: sessions,
	}
	if !ctrl.NoRegistration {
		api.POST("/auth/register", auth.Register)
	}
	api.POST("/auth/sign_in", auth.Login)
	api.POST("/auth/refresh", auth.Refresh)
	restricted.DELETE("/auth/session", auth.SignOut)
	restricted.POST("/auth/change_pw", auth.UpdatePassword)
	restricted.GET("/profile", auth.Profile)
	restricted.PATCH("/profile", auth.UpdateProfile)

	//
	// item handlers
	//
	item := &item{
		items:     service.NewItem(ctrl.Database, ctrl.Images, ctrl.Store, signal, ctrl.Logger),
		comments:  service.NewComment(ctrl.Database, ctrl.Notifier, ctrl.Logger),
		hub:       ctrl.Hub,
		maxUpload: ctrl.MaxUpload,
	}
	restricted.GET("/items", item.Feed)
	restricted.POST("/items", item.Report)
	if ctrl.Hub != nil {
		restricted.GET(strings.TrimPrefix(LivePath, "/api"), item.Live)
	}
	restricted.GET("/items/:id", item.Show)
	restricted.GET("/items/:id/comments", item.Comments)
	restricted.POST("/items/:id/comments", item.AddComment)
	restricted.GET("/profile/items", item.Reported)
	admin.GET("/items", item.Feed)
	admin.POST("/items/:id/found", item.MarkFound)

	//
	// claim handlers
	//
	claim := &claim{
		claims: service.NewClaim(ctrl.Database, ctrl.Notifier, signal, ctrl.Logger),
	}
	restricted.POST("/items/:id/claim", claim.Submit)
	restricted.GET("/claims", claim.Mine)
	admin.GET("/claims", claim.List)
	admin.POST("/claims/:id/approve", claim.Approve)
	admin.POST("/claims/:id/reject", claim.Reject)

	//
	// inbox handlers
	//
	inbox := &inbox{
		notifications: service.NewNotification(ctrl.Database),
		chat:          service.NewChat(ctrl.Database, ctrl.Notifier, ctrl.Logger),
	}
	restricted.GET("/notifications", inbox.Notifications)
	restricted.POST("/notifications/read", inbox.MarkAllRead)
	restricted.POST("/notifications/:id/read", inbox.MarkRead)
	restricted.GET("/messages", inbox.Messages)
	restricted.POST("/messages", inbox.Post)
	admin.GET("/threads", inbox.Threads)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	return middlewares.CurrentUser(c)
}

func currentSession(c echo.Context) *model.Session {
	return middlewares.CurrentSession(c)
}
