package server

import (
	"net/http"

	"github.com/Kapsk2801/Lost-Found/internal/server/serializer"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/labstack/echo/v4"
)

// inbox contains the notification and chat handlers.
type inbox struct {
	notifications *service.NotificationService
	chat          *service.ChatService
}

// Notifications renders the notifications of the current user, newest first.
func (h *inbox) Notifications(c echo.Context) error {
	notifications, err := h.notifications.List(currentUser(c))
	if err != nil {
		return err
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return c.JSON(http.StatusOK, serializer.Notifications(notifications, unread))
}

// MarkRead marks the given notification as read.
func (h *inbox) MarkRead(c echo.Context) error {
	notification, err := h.notifications.MarkRead(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notification": serializer.Notification(notification),
	})
}

// MarkAllRead marks all the notifications of the current user as read.
func (h *inbox) MarkAllRead(c echo.Context) error {
	if err := h.notifications.MarkAllRead(currentUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages renders a conversation.
// Users read their own thread, administrators select one with thread_id.
func (h *inbox) Messages(c echo.Context) error {
	messages, err := h.chat.Messages(currentUser(c), c.QueryParam("thread_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"messages": serializer.Messages(messages),
	})
}

// Post sends a chat message.
func (h *inbox) Post(c echo.Context) error {
	var params service.MessageParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	message, err := h.chat.Post(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": serializer.Message(message),
	})
}

// Threads lists the conversations for administrators.
func (h *inbox) Threads(c echo.Context) error {
	threads, err := h.chat.Threads(currentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"threads": serializer.Threads(threads),
	})
}
