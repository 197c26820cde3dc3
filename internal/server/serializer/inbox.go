package serializer

import (
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/service"
)

// Notification serializes the render of a notification.
func Notification(m *model.Notification) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"created_at": m.CreatedAt,
		"type":       m.Type,
		"message":    m.Message,
		"claim_id":   m.ClaimID,
		"item_id":    m.ItemID,
		"message_id": m.MessageID,
		"read":       m.Read,
	}
}

// Notifications serializes the inbox of a user.
func Notifications(m []*model.Notification, unread int) map[string]any {
	notifications := make([]map[string]any, len(m))
	for i, n := range m {
		notifications[i] = Notification(n)
	}
	return map[string]any{
		"notifications": notifications,
		"unread":        unread,
	}
}

// Comment serializes the render of a comment.
func Comment(m *model.Comment) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"created_at": m.CreatedAt,
		"item_id":    m.ItemID,
		"user_id":    m.UserID,
		"author":     m.Author,
		"text":       m.Text,
	}
}

// Comments serializes the render of comments.
func Comments(m []*model.Comment) []map[string]any {
	comments := make([]map[string]any, len(m))
	for i, c := range m {
		comments[i] = Comment(c)
	}
	return comments
}

// Message serializes the render of a chat message.
func Message(m *model.Message) map[string]any {
	return map[string]any{
		"id":             m.ID,
		"created_at":     m.CreatedAt,
		"thread_id":      m.ThreadID,
		"sender_id":      m.SenderID,
		"sender_email":   m.SenderEmail,
		"from_admin":     m.FromAdmin,
		"text":           m.Text,
		"shared_item_id": m.SharedItemID,
		"read":           m.Read,
	}
}

// Messages serializes the render of chat messages.
func Messages(m []*model.Message) []map[string]any {
	messages := make([]map[string]any, len(m))
	for i, message := range m {
		messages[i] = Message(message)
	}
	return messages
}

// Threads serializes the conversations listed to administrators.
func Threads(m []*service.Thread) []map[string]any {
	threads := make([]map[string]any, len(m))
	for i, t := range m {
		threads[i] = map[string]any{
			"id":     t.ID,
			"email":  t.Email,
			"unread": t.Unread,
			"last":   Message(t.Last),
		}
	}
	return threads
}
