package database

import (
	"sort"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

type strm struct {
	db   *storm.DB  // nil inside a transaction
	node storm.Node // root node or transaction
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

// Models lists all the records stored in database.
var Models = []model.Model{
	&model.User{},
	&model.Session{},
	&model.Item{},
	&model.Claim{},
	&model.Notification{},
	&model.Comment{},
	&model.Message{},
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range Models {
		if err := db.Init(m); err != nil {
			return errors.Wrapf(err, "could not init %T index", m)
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range Models {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrapf(err, "could not ReIndex %T", m)
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db:   db,
		node: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
	}
	if m.GetCreatedAt() == nil {
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.node.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.node.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	if c.db == nil {
		return errors.New("could not close a transaction")
	}
	return c.db.Close()
}

// IsNotFound returns true if err is nil or a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is an unique constraint error.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// Transaction runs fn in a single write transaction.
// Nested calls reuse the current transaction.
func (c *strm) Transaction(fn func(tx Client) error) error {
	if c.db == nil {
		return fn(c)
	}

	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	if err = fn(&strm{node: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "could not commit transaction")
}

//
// Users
//

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.node.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.node.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindAdmins returns all the users having the admin role.
func (c *strm) FindAdmins() ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.node.Find("Role", model.RoleAdmin, &users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find admins")
	}
	return users, nil
}

//
// Sessions
//

// FindSession returns the session for the given id (UUID).
func (c *strm) FindSession(id string) (*model.Session, error) {
	var session model.Session
	if err := c.node.One("ID", id, &session); err != nil {
		return nil, errors.Wrap(err, "find session by id")
	}
	return &session, nil
}

// FindSessionByRefreshToken returns the session for the given refresh token.
func (c *strm) FindSessionByRefreshToken(token string) (*model.Session, error) {
	var session model.Session
	if err := c.node.One("RefreshToken", token, &session); err != nil {
		return nil, errors.Wrap(err, "find session by refresh token")
	}
	return &session, nil
}

// FindSessionsByUserID returns all the sessions for the given user id.
func (c *strm) FindSessionsByUserID(userID string) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := c.node.Find("UserID", userID, &sessions)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	return sortByCreation(sessions), nil
}

//
// Items
//

// FindItem returns the item for the given id (UUID).
func (c *strm) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.node.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItems returns all the items.
func (c *strm) FindItems() ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.node.All(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items")
	}
	return sortByCreation(items), nil
}

// FindItemsByReporterID returns all the items reported by the given user.
func (c *strm) FindItemsByReporterID(userID string) ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.node.Find("ReporterID", userID, &items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items by reporter")
	}
	return sortByCreation(items), nil
}

//
// Claims
//

// FindClaim returns the claim for the given id (UUID).
func (c *strm) FindClaim(id string) (*model.Claim, error) {
	var claim model.Claim
	if err := c.node.One("ID", id, &claim); err != nil {
		return nil, errors.Wrap(err, "could not find claim")
	}
	return &claim, nil
}

// FindClaims returns all the claims.
func (c *strm) FindClaims() ([]*model.Claim, error) {
	claims := make([]*model.Claim, 0)
	err := c.node.All(&claims)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find claims")
	}
	return sortByCreation(claims), nil
}

// FindClaimsByStatus returns all the claims in the given state.
func (c *strm) FindClaimsByStatus(status string) ([]*model.Claim, error) {
	claims := make([]*model.Claim, 0)
	err := c.node.Find("ClaimStatus", status, &claims)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find claims by status")
	}
	return sortByCreation(claims), nil
}

// FindClaimsByUserID returns all the claims submitted by the given user.
func (c *strm) FindClaimsByUserID(userID string) ([]*model.Claim, error) {
	claims := make([]*model.Claim, 0)
	err := c.node.Find("UserID", userID, &claims)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find claims by user id")
	}
	return sortByCreation(claims), nil
}

// FindPendingClaimsByItemID returns the open claims on the given item.
func (c *strm) FindPendingClaimsByItemID(itemID string) ([]*model.Claim, error) {
	claims := make([]*model.Claim, 0)
	err := c.node.Select(q.Eq("ItemID", itemID), q.Eq("ClaimStatus", model.ClaimStatusPending)).Find(&claims)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find pending claims by item id")
	}
	return sortByCreation(claims), nil
}

//
// Notifications
//

// FindNotification returns the notification for the given id (UUID).
func (c *strm) FindNotification(id string) (*model.Notification, error) {
	var notification model.Notification
	if err := c.node.One("ID", id, &notification); err != nil {
		return nil, errors.Wrap(err, "could not find notification")
	}
	return &notification, nil
}

// FindNotificationsByAudience returns all the notifications addressed to one of the given audiences.
func (c *strm) FindNotificationsByAudience(audiences ...string) ([]*model.Notification, error) {
	notifications := make([]*model.Notification, 0)
	err := c.node.Select(q.In("Audience", audiences)).Find(&notifications)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find notifications by audience")
	}
	return sortByCreation(notifications), nil
}

//
// Comments
//

// FindCommentsByItemID returns the comments of the given item.
func (c *strm) FindCommentsByItemID(itemID string) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0)
	err := c.node.Find("ItemID", itemID, &comments)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find comments by item id")
	}
	return sortByCreation(comments), nil
}

//
// Messages
//

// FindMessages returns all the chat messages.
func (c *strm) FindMessages() ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	err := c.node.All(&messages)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find messages")
	}
	return sortByCreation(messages), nil
}

// FindMessagesByThreadID returns the messages of the given conversation.
func (c *strm) FindMessagesByThreadID(threadID string) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	err := c.node.Find("ThreadID", threadID, &messages)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find messages by thread id")
	}
	return sortByCreation(messages), nil
}

// sortByCreation orders records by creation date, oldest first, ties broken by id.
func sortByCreation[T model.Model](records []T) []T {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := created(records[i]), created(records[j])
		if ti.Equal(tj) {
			return records[i].GetID() < records[j].GetID()
		}
		return ti.Before(tj)
	})
	return records
}

func created(m model.Model) time.Time {
	if t := m.GetCreatedAt(); t != nil {
		return *t
	}
	return time.Time{}
}
