package legacy

import (
	"bytes"
	"context"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// An Importer writes legacy exports into the database.
	Importer struct {
		db     database.Client
		images *imaging.Processor
		store  storage.Store
		logger logrus.FieldLogger
	}

	// A Report summarizes an import.
	Report struct {
		Users  int
		Items  int
		Claims int
		Images int
		// Skipped lists the users whose email belongs to another account.
		Skipped []string
		// Inconsistent lists the items whose claim fields contradict each other.
		Inconsistent []string
	}
)

// NewImporter returns a new Importer.
func NewImporter(db database.Client, images *imaging.Processor, store storage.Store, logger logrus.FieldLogger) *Importer {
	return &Importer{
		db:     db,
		images: images,
		store:  store,
		logger: logger,
	}
}

// Import parses and writes the given export.
// Records keep their legacy ids so importing the same export twice overwrites the first import.
func (im *Importer) Import(ctx context.Context, data []byte) (*Report, error) {
	export, err := Parse(data)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	for _, item := range export.Items {
		raw, ok := export.Images[item.ID]
		if !ok {
			continue
		}

		logger := im.logger.WithField("item_id", item.ID)
		picture, err := im.images.Process(bytes.NewReader(raw))
		if err != nil {
			logger.WithError(err).Warn("skipping unreadable picture")
			continue
		}

		item.ImageRef, err = im.store.Put(ctx, storage.ItemImageKey(item.ID), picture, imaging.MIME)
		if err != nil {
			return nil, errors.Wrapf(err, "could not store picture of item %s", item.ID)
		}
		report.Images++
	}

	err = im.db.Transaction(func(tx database.Client) error {
		for _, user := range export.Users {
			if user.Email != "" {
				u, err := tx.FindUserByMail(user.Email)
				if err != nil && !tx.IsNotFound(err) {
					return err
				}
				if u != nil && u.ID != user.ID {
					report.Skipped = append(report.Skipped, user.ID)
					continue
				}

				// Keep the credentials of an account created before the import.
				if u != nil {
					user.Password = u.Password
					user.PasswordUpdatedAt = u.PasswordUpdatedAt
				}
			}

			if err := tx.Save(user); err != nil {
				return errors.Wrapf(err, "could not save user %s", user.ID)
			}
			report.Users++
		}

		for _, item := range export.Items {
			if err := tx.Save(item); err != nil {
				return errors.Wrapf(err, "could not save item %s", item.ID)
			}
			report.Items++

			if !item.Consistent() {
				report.Inconsistent = append(report.Inconsistent, item.ID)
			}
		}

		for _, claim := range export.Claims {
			if err := tx.Save(claim); err != nil {
				return errors.Wrapf(err, "could not save claim %s", claim.ID)
			}
			report.Claims++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range report.Skipped {
		im.logger.WithField("user_id", id).Warn("email already used by another account")
	}
	for _, id := range report.Inconsistent {
		im.logger.WithField("item_id", id).Warn("inconsistent claim state")
	}
	return report, nil
}
