package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/feed"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/live"
	"github.com/Kapsk2801/Lost-Found/internal/server/serializer"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// item contains all item handlers.
type item struct {
	items     *service.ItemService
	comments  *service.CommentService
	hub       *live.Hub
	maxUpload int64
}

// Feed renders the projected item set.
func (h *item) Feed(c echo.Context) error {
	var q feed.Query
	if err := c.Bind(&q); err != nil {
		return err
	}

	cards, err := h.items.Feed(q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"query": q.Normalize(),
		"items": serializer.Cards(cards, currentUser(c)),
	})
}

// Live streams the projected item set each time it changes.
func (h *item) Live(c echo.Context) error {
	var q feed.Query
	if err := c.Bind(&q); err != nil {
		return err
	}

	subscription, err := h.hub.Subscribe()
	if err != nil {
		return errors.Wrap(err, "could not subscribe to live feed")
	}
	defer subscription.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	viewer := currentUser(c)
	for {
		snapshot, err := subscription.Next(c.Request().Context())
		if err != nil {
			// Client gone or server shutting down.
			return nil
		}

		payload, err := json.Marshal(serializer.Cards(feed.Project(snapshot.Items, q), viewer))
		if err != nil {
			return errors.Wrap(err, "could not serialize live snapshot")
		}

		if _, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snapshot.Sequence, payload); err != nil {
			return nil
		}
		w.Flush()
	}
}

// Show renders the given item.
func (h *item) Show(c echo.Context) error {
	item, err := h.items.Get(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"item": serializer.Item(item, currentUser(c)),
	})
}

// Reported renders the items reported by the current user.
func (h *item) Reported(c echo.Context) error {
	cards, err := h.items.Reported(currentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": serializer.Cards(cards, currentUser(c)),
	})
}

// Report creates a lost or found report.
// Pictures are sent as the image field of a multipart form.
func (h *item) Report(c echo.Context) error {
	var params service.ReportParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	var image io.Reader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil && err != http.ErrMissingFile {
			return lferror.Invalid("image could not be read.").Wrap(err)
		}

		if fh != nil {
			if h.maxUpload > 0 && fh.Size > h.maxUpload {
				return lferror.NewWithTagCode(http.StatusRequestEntityTooLarge, "image-too-large",
					fmt.Sprintf("image must be smaller than %d bytes.", h.maxUpload))
			}

			f, err := fh.Open()
			if err != nil {
				return errors.Wrap(err, "could not open uploaded image")
			}
			defer f.Close()
			image = f
		}
	}

	item, err := h.items.Report(c.Request().Context(), currentUser(c), params, image)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"item": serializer.Item(item, currentUser(c)),
	})
}

// MarkFound records that an administrator holds the item.
func (h *item) MarkFound(c echo.Context) error {
	item, err := h.items.MarkFound(c.Param("id"), currentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"item": serializer.Item(item, currentUser(c)),
	})
}

// Comments renders the comments of the given item.
func (h *item) Comments(c echo.Context) error {
	comments, err := h.comments.List(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"comments": serializer.Comments(comments),
	})
}

// AddComment comments the given item.
func (h *item) AddComment(c echo.Context) error {
	var params service.CommentParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	comment, err := h.comments.Add(c.Param("id"), currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"comment": serializer.Comment(comment),
	})
}
