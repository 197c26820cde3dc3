package service

import (
	"fmt"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/sirupsen/logrus"
)

type (
	// A CommentService manages the comments left on items.
	CommentService struct {
		db       database.Client
		notifier Notifier
		logger   logrus.FieldLogger
	}

	// CommentParams are used to comment an item.
	CommentParams struct {
		Text string `json:"text" validate:"required,max=1000"`
	}
)

// NewComment returns a new CommentService.
func NewComment(db database.Client, notifier Notifier, logger logrus.FieldLogger) *CommentService {
	return &CommentService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns the comments of the given item, oldest first.
func (s *CommentService) List(itemID string) ([]*model.Comment, error) {
	if _, err := s.item(itemID); err != nil {
		return nil, err
	}

	comments, err := s.db.FindCommentsByItemID(itemID)
	if err != nil {
		return nil, lferror.StoreRead(err)
	}
	return comments, nil
}

// Add comments the given item. The reporter of the item is notified.
func (s *CommentService) Add(itemID string, author *model.User, params CommentParams) (*model.Comment, error) {
	params.Text = strings.TrimSpace(params.Text)
	if err := Validate(params); err != nil {
		return nil, err
	}

	item, err := s.item(itemID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ItemID: item.ID,
		UserID: author.ID,
		Author: author.FullName(),
		Text:   params.Text,
	}
	if err = s.db.Save(comment); err != nil {
		return nil, lferror.StoreWrite(err)
	}

	if item.ReporterID != "" && item.ReporterID != author.ID {
		err = s.notifier.Notify(&model.Notification{
			Audience: item.ReporterID,
			Type:     model.NotificationNewComment,
			Message:  fmt.Sprintf("%s commented on %q.", comment.Author, item.Title),
			ItemID:   item.ID,
			SenderID: author.ID,
		})
		if err != nil {
			s.logger.WithError(err).Error("could not notify comment")
		}
	}
	return comment, nil
}

func (s *CommentService) item(id string) (*model.Item, error) {
	item, err := s.db.FindItem(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, lferror.ErrItemNotFound
		}
		return nil, lferror.StoreRead(err)
	}
	return item, nil
}
