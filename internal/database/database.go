package database

import (
	"github.com/Kapsk2801/Lost-Found/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is an unique constraint error.
		IsAlreadyExists(err error) bool
		// Transaction runs fn in a single write transaction.
		// All the changes made through tx are discarded when fn returns an error.
		Transaction(fn func(tx Client) error) error

		UserInteraction
		SessionInteraction
		ItemInteraction
		ClaimInteraction
		NotificationInteraction
		CommentInteraction
		MessageInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
		// FindAdmins returns all the users having the admin role.
		FindAdmins() ([]*model.User, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSession returns the session for the given id (UUID).
		FindSession(id string) (*model.Session, error)
		// FindSessionByRefreshToken returns the session for the given refresh token.
		FindSessionByRefreshToken(token string) (*model.Session, error)
		// FindSessionsByUserID returns all sessions for the given user id.
		FindSessionsByUserID(userID string) ([]*model.Session, error)
	}

	// An ItemInteraction defines all the methods used to interact with item records.
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItems returns all the items.
		FindItems() ([]*model.Item, error)
		// FindItemsByReporterID returns all the items reported by the given user.
		FindItemsByReporterID(userID string) ([]*model.Item, error)
	}

	// A ClaimInteraction defines all the methods used to interact with claim records.
	ClaimInteraction interface {
		// FindClaim returns the claim for the given id (UUID).
		FindClaim(id string) (*model.Claim, error)
		// FindClaims returns all the claims.
		FindClaims() ([]*model.Claim, error)
		// FindClaimsByStatus returns all the claims in the given state.
		FindClaimsByStatus(status string) ([]*model.Claim, error)
		// FindClaimsByUserID returns all the claims submitted by the given user.
		FindClaimsByUserID(userID string) ([]*model.Claim, error)
		// FindPendingClaimsByItemID returns the open claims on the given item.
		FindPendingClaimsByItemID(itemID string) ([]*model.Claim, error)
	}

	// A NotificationInteraction defines all the methods used to interact with notification records.
	NotificationInteraction interface {
		// FindNotification returns the notification for the given id (UUID).
		FindNotification(id string) (*model.Notification, error)
		// FindNotificationsByAudience returns all the notifications addressed to one of the given audiences.
		FindNotificationsByAudience(audiences ...string) ([]*model.Notification, error)
	}

	// A CommentInteraction defines all the methods used to interact with comment records.
	CommentInteraction interface {
		// FindCommentsByItemID returns the comments of the given item.
		FindCommentsByItemID(itemID string) ([]*model.Comment, error)
	}

	// A MessageInteraction defines all the methods used to interact with chat records.
	MessageInteraction interface {
		// FindMessages returns all the chat messages.
		FindMessages() ([]*model.Message, error)
		// FindMessagesByThreadID returns the messages of the given conversation.
		FindMessagesByThreadID(threadID string) ([]*model.Message, error)
	}
)
