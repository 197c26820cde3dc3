// Package notify delivers notifications in-app and by email.
package notify

import (
	"strings"
	"sync"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Notifier delivers notifications according to their delivery policy.
type Notifier struct {
	db          database.Client
	mailer      Mailer
	adminEmails []string
	logger      logrus.FieldLogger

	sending sync.WaitGroup
}

// New returns a new Notifier. mailer may be nil to disable emails.
func New(db database.Client, mailer Mailer, adminEmails []string, logger logrus.FieldLogger) *Notifier {
	return &Notifier{
		db:          db,
		mailer:      mailer,
		adminEmails: adminEmails,
		logger:      logger,
	}
}

// Notify stores the notification and mails it when its policy requires it.
// Mails are sent in the background, their failures are logged and never returned.
func (n *Notifier) Notify(notification *model.Notification) error {
	policy := ResolveDeliveryPolicy(notification.Type)

	if policy.InApp {
		if err := n.db.Save(notification); err != nil {
			return errors.Wrap(err, "could not save notification")
		}
	}

	if policy.Email && n.mailer != nil {
		n.mail(notification)
	}
	return nil
}

func (n *Notifier) mail(notification *model.Notification) {
	logger := n.logger.WithFields(logrus.Fields{
		"type":     notification.Type,
		"audience": notification.Audience,
	})

	to, err := n.recipients(notification.Audience)
	if err != nil {
		logger.WithError(err).Warn("could not resolve mail recipients")
		return
	}
	if len(to) == 0 {
		return
	}

	subject, body := Subject(notification.Type), notification.Message
	n.sending.Add(1)
	go func() {
		defer n.sending.Done()
		if err := n.mailer.Send(to, subject, body); err != nil {
			logger.WithError(err).Warn("could not mail notification")
		}
	}()
}

// Wait blocks until the mails being sent are delivered or have failed.
func (n *Notifier) Wait() {
	n.sending.Wait()
}

func (n *Notifier) recipients(audience string) ([]string, error) {
	if audience != model.AudienceAdmin {
		user, err := n.db.FindUser(audience)
		if err != nil {
			return nil, err
		}
		return []string{user.Email}, nil
	}

	admins, err := n.db.FindAdmins()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	to := []string{}
	add := func(email string) {
		email = strings.TrimSpace(email)
		if email == "" || seen[strings.ToLower(email)] {
			return
		}
		seen[strings.ToLower(email)] = true
		to = append(to, email)
	}

	for _, email := range n.adminEmails {
		add(email)
	}
	for _, admin := range admins {
		add(admin.Email)
	}
	return to, nil
}
