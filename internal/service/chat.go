package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/sirupsen/logrus"
)

type (
	// A ChatService manages the conversations between users and administrators.
	// Each non-admin user owns one thread identified by their user id.
	ChatService struct {
		db       database.Client
		notifier Notifier
		logger   logrus.FieldLogger
	}

	// MessageParams are used to post a chat message.
	MessageParams struct {
		// ThreadID is only used by administrators to answer a user.
		ThreadID     string `json:"thread_id"`
		Text         string `json:"text"           validate:"required,max=2000"`
		SharedItemID string `json:"shared_item_id"`
	}

	// A Thread summarizes a conversation.
	Thread struct {
		ID     string
		Email  string
		Last   *model.Message
		Unread int // messages from the user not read by an administrator
	}
)

// NewChat returns a new ChatService.
func NewChat(db database.Client, notifier Notifier, logger logrus.FieldLogger) *ChatService {
	return &ChatService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// Messages returns the messages of a thread, oldest first.
// Users can only read their own thread; the messages sent by the other side are marked as read.
func (s *ChatService) Messages(user *model.User, threadID string) ([]*model.Message, error) {
	threadID, err := s.thread(user, threadID)
	if err != nil {
		return nil, err
	}

	messages, err := s.db.FindMessagesByThreadID(threadID)
	if err != nil {
		return nil, lferror.StoreRead(err)
	}

	for _, m := range messages {
		if m.Read || m.FromAdmin == user.IsAdmin() {
			continue
		}
		m.Read = true
		if err = s.db.Save(m); err != nil {
			return nil, lferror.StoreWrite(err)
		}
	}
	return messages, nil
}

// Post adds a message to a thread and notifies the other side.
func (s *ChatService) Post(user *model.User, params MessageParams) (*model.Message, error) {
	params.Text = strings.TrimSpace(params.Text)
	if err := Validate(params); err != nil {
		return nil, err
	}

	threadID, err := s.thread(user, params.ThreadID)
	if err != nil {
		return nil, err
	}

	if params.SharedItemID != "" {
		if _, err = s.db.FindItem(params.SharedItemID); err != nil {
			if s.db.IsNotFound(err) {
				return nil, lferror.ErrItemNotFound
			}
			return nil, lferror.StoreRead(err)
		}
	}

	message := &model.Message{
		ThreadID:     threadID,
		SenderID:     user.ID,
		SenderEmail:  user.Email,
		FromAdmin:    user.IsAdmin(),
		Text:         params.Text,
		SharedItemID: params.SharedItemID,
	}
	if err = s.db.Save(message); err != nil {
		return nil, lferror.StoreWrite(err)
	}

	notification := &model.Notification{
		Audience:  model.AudienceAdmin,
		Type:      model.NotificationNewMessage,
		Message:   fmt.Sprintf("New message from %s.", user.Email),
		MessageID: message.ID,
		ItemID:    message.SharedItemID,
		SenderID:  user.ID,
	}
	if message.FromAdmin {
		notification.Audience = threadID
		notification.Message = "New message from the Lost & Found desk."
	}
	if err = s.notifier.Notify(notification); err != nil {
		s.logger.WithError(err).Error("could not notify message")
	}

	return message, nil
}

// Threads lists the conversations, most recent first.
func (s *ChatService) Threads(admin *model.User) ([]*Thread, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	messages, err := s.db.FindMessages()
	if err != nil {
		return nil, lferror.StoreRead(err)
	}

	threads := map[string]*Thread{}
	for _, m := range messages {
		t, ok := threads[m.ThreadID]
		if !ok {
			t = &Thread{ID: m.ThreadID}
			threads[m.ThreadID] = t
		}
		if !m.FromAdmin {
			t.Email = m.SenderEmail
			if !m.Read {
				t.Unread++
			}
		}
		t.Last = m // messages are sorted oldest first
	}

	result := make([]*Thread, 0, len(threads))
	for _, t := range threads {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Last.Created(), result[j].Last.Created()
		if ti.Equal(tj) {
			return result[i].ID < result[j].ID
		}
		return ti.After(tj)
	})
	return result, nil
}

func (s *ChatService) thread(user *model.User, threadID string) (string, error) {
	if !user.IsAdmin() {
		if threadID != "" && threadID != user.ID {
			return "", lferror.ErrAdminRequired
		}
		return user.ID, nil
	}

	if threadID == "" {
		return "", lferror.Invalid("thread_id is required.")
	}
	return threadID, nil
}
