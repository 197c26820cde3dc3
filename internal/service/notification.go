package service

import (
	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
)

// A NotificationService exposes the notification inbox.
type NotificationService struct {
	db database.Client
}

// NewNotification returns a new NotificationService.
func NewNotification(db database.Client) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the notifications of the user, newest first.
// Administrators also receive the notifications addressed to every administrator.
func (s *NotificationService) List(user *model.User) ([]*model.Notification, error) {
	notifications, err := s.db.FindNotificationsByAudience(audiences(user)...)
	if err != nil {
		return nil, lferror.StoreRead(err)
	}

	// Reverse the creation order.
	for i, j := 0, len(notifications)-1; i < j; i, j = i+1, j-1 {
		notifications[i], notifications[j] = notifications[j], notifications[i]
	}
	return notifications, nil
}

// Unread returns the number of unread notifications of the user.
func (s *NotificationService) Unread(user *model.User) (int, error) {
	notifications, err := s.List(user)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, notification := range notifications {
		if !notification.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead marks the given notification as read.
func (s *NotificationService) MarkRead(user *model.User, id string) (*model.Notification, error) {
	notification, err := s.db.FindNotification(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, lferror.ErrNotificationNotFound
		}
		return nil, lferror.StoreRead(err)
	}
	if !addressedTo(notification, user) {
		return nil, lferror.ErrNotificationNotFound
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err = s.db.Save(notification); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	return notification, nil
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(user *model.User) error {
	return storeWrite(s.db.Transaction(func(tx database.Client) error {
		notifications, err := tx.FindNotificationsByAudience(audiences(user)...)
		if err != nil {
			return err
		}

		for _, notification := range notifications {
			if notification.Read {
				continue
			}
			notification.Read = true
			if err = tx.Save(notification); err != nil {
				return err
			}
		}
		return nil
	}))
}

func audiences(user *model.User) []string {
	if user.IsAdmin() {
		return []string{user.ID, model.AudienceAdmin}
	}
	return []string{user.ID}
}

func addressedTo(notification *model.Notification, user *model.User) bool {
	for _, audience := range audiences(user) {
		if notification.Audience == audience {
			return true
		}
	}
	return false
}
