package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/feed"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type (
	// An ItemService manages item reports.
	ItemService struct {
		db     database.Client
		images *imaging.Processor
		store  storage.Store
		feed   Signal
		logger logrus.FieldLogger
	}

	// ReportParams are used to report a lost or found item.
	ReportParams struct {
		Title        string `json:"title"         form:"title"         validate:"required,max=120"`
		Description  string `json:"description"   form:"description"   validate:"required,max=2000"`
		Category     string `json:"category"      form:"category"      validate:"required,oneof=electronics documents accessories keys clothing other"`
		Location     string `json:"location"      form:"location"      validate:"required,max=200"`
		ReportType   string `json:"type"          form:"type"          validate:"required,oneof=lost found"`
		OccurredOn   string `json:"date"          form:"date"          validate:"required,datetime=2006-01-02"`
		ReporterName string `json:"reporter_name" form:"reporter_name" validate:"required,max=120"`
		ContactEmail string `json:"contact_email" form:"contact_email" validate:"required,email"`
	}
)

// NewItem returns a new ItemService.
func NewItem(db database.Client, images *imaging.Processor, store storage.Store, feed Signal, logger logrus.FieldLogger) *ItemService {
	return &ItemService{
		db:     db,
		images: images,
		store:  store,
		feed:   feed,
		logger: logger,
	}
}

// Report creates a new item. image may be nil for lost items.
func (s *ItemService) Report(ctx context.Context, reporter *model.User, params ReportParams, image io.Reader) (*model.Item, error) {
	params.trim()
	if err := Validate(params); err != nil {
		return nil, err
	}
	if image == nil && params.ReportType == model.ReportFound {
		return nil, lferror.Invalid("image is required for found items.")
	}

	item := model.NewItem(params.ReportType)
	item.ID = uuid.Must(uuid.NewV4()).String()
	item.ReporterID = reporter.ID
	item.ReporterName = params.ReporterName
	item.ContactEmail = params.ContactEmail
	item.Title = params.Title
	item.Description = params.Description
	item.Category = params.Category
	item.Location = params.Location
	item.OccurredOn = params.OccurredOn

	if image != nil {
		data, err := s.images.Process(image)
		if err != nil {
			if err == imaging.ErrUnsupportedFormat {
				return nil, lferror.Invalid("image must be a JPEG or PNG picture.")
			}
			return nil, lferror.Invalid("image could not be read.").Wrap(err)
		}

		item.ImageRef, err = s.store.Put(ctx, storage.ItemImageKey(item.ID), data, imaging.MIME)
		if err != nil {
			return nil, lferror.StoreWrite(err)
		}
	}

	if err := s.db.Save(item); err != nil {
		if item.ImageRef != "" {
			if derr := s.store.Delete(ctx, storage.ItemImageKey(item.ID)); derr != nil {
				s.logger.WithError(derr).WithField("item_id", item.ID).Warn("could not delete orphan image")
			}
		}
		return nil, lferror.StoreWrite(err)
	}

	s.logger.WithFields(logrus.Fields{"item_id": item.ID, "type": item.ReportType}).Info("item reported")
	s.feed.Changed()
	return item, nil
}

// Get returns the item for the given id.
func (s *ItemService) Get(id string) (*model.Item, error) {
	item, err := s.db.FindItem(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, lferror.ErrItemNotFound
		}
		return nil, lferror.StoreRead(err)
	}
	return item, nil
}

// All returns the complete item set.
func (s *ItemService) All() ([]*model.Item, error) {
	items, err := s.db.FindItems()
	if err != nil {
		return nil, lferror.StoreRead(err)
	}
	return items, nil
}

// Feed returns the projected feed for the given query.
func (s *ItemService) Feed(q feed.Query) ([]feed.Card, error) {
	items, err := s.All()
	if err != nil {
		return nil, err
	}
	return feed.Project(items, q), nil
}

// Reported returns the items reported by the given user, newest first.
func (s *ItemService) Reported(user *model.User) ([]feed.Card, error) {
	items, err := s.db.FindItemsByReporterID(user.ID)
	if err != nil {
		return nil, lferror.StoreRead(err)
	}
	return feed.Project(items, feed.Query{Sort: feed.SortLatest}), nil
}

// MarkFound records that an administrator holds the item.
func (s *ItemService) MarkFound(id string, admin *model.User) (*model.Item, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var item *model.Item
	err := s.db.Transaction(func(tx database.Client) error {
		it, err := tx.FindItem(id)
		if err != nil {
			if tx.IsNotFound(err) {
				return lferror.ErrItemNotFound
			}
			return lferror.StoreRead(err)
		}
		if it.Status == model.StatusFound || it.ClaimStatus == model.ClaimStatusClaimed {
			return lferror.ErrItemAlreadyFound
		}

		t := time.Now().UTC()
		it.Status = model.StatusFound
		it.FoundAt = &t
		if err = tx.Save(it); err != nil {
			return lferror.StoreWrite(err)
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, storeWrite(err)
	}

	s.logger.WithFields(logrus.Fields{"item_id": id, "admin_id": admin.ID}).Info("item marked as found")
	s.feed.Changed()
	return item, nil
}

func (p *ReportParams) trim() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.Location = strings.TrimSpace(p.Location)
	p.ReportType = strings.ToLower(strings.TrimSpace(p.ReportType))
	p.OccurredOn = strings.TrimSpace(p.OccurredOn)
	p.ReporterName = strings.TrimSpace(p.ReporterName)
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)
}
