package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/sirupsen/logrus"
)

// Resolution decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ReasonClaimedByAnother is the rejection reason of claims closed by the approval of a competing claim.
const ReasonClaimedByAnother = "item claimed by another user"

type (
	// A ClaimService runs the claim workflow.
	ClaimService struct {
		db       database.Client
		notifier Notifier
		feed     Signal
		logger   logrus.FieldLogger
	}

	// A Submission is the outcome of a claim submission.
	// Created is false when the user already had a pending claim on the item.
	Submission struct {
		Claim   *model.Claim
		Item    *model.Item
		Created bool
	}

	// A Resolution is the outcome of a claim resolution.
	Resolution struct {
		Claim *model.Claim
		Item  *model.Item // nil when the item no longer exists
		// Closed lists the competing claims rejected by an approval.
		Closed []*model.Claim
	}

	// A ClaimWithItem is a claim joined with the current state of its item.
	ClaimWithItem struct {
		Claim *model.Claim
		Item  *model.Item
	}
)

// NewClaim returns a new ClaimService.
func NewClaim(db database.Client, notifier Notifier, feed Signal, logger logrus.FieldLogger) *ClaimService {
	return &ClaimService{
		db:       db,
		notifier: notifier,
		feed:     feed,
		logger:   logger,
	}
}

// Submit records the claim of the given user on the given item.
//
// The item is re-read and reserved first, then the claim is created and
// finally its id is written back on the item. The three writes share one
// write transaction: a failure at any step rolls the item back to its
// previous state and leaves no claim behind.
func (s *ClaimService) Submit(itemID string, user *model.User) (*Submission, error) {
	logger := s.logger.WithFields(logrus.Fields{"item_id": itemID, "user_id": user.ID})

	var submission Submission
	err := s.db.Transaction(func(tx database.Client) error {
		item, err := tx.FindItem(itemID)
		if err != nil {
			if tx.IsNotFound(err) {
				return lferror.ErrItemNotFound
			}
			return lferror.StoreRead(err)
		}

		switch item.ClaimStatus {
		case model.ClaimStatusClaimed:
			return lferror.ErrAlreadyClaimed
		case model.ClaimStatusPending:
			if !item.HeldBy(user.ID) {
				return lferror.ErrClaimInProgress
			}

			existing, err := pendingClaimOf(tx, item, user.ID)
			if err != nil {
				return lferror.StoreRead(err)
			}
			if existing != nil {
				submission = Submission{Claim: existing, Item: item}
				return nil
			}
			// Reservation without claim (e.g. imported data), the claim is recreated below.
		}

		// Reserve.
		item.Reserve(user.ID)
		if err = tx.Save(item); err != nil {
			return lferror.StoreWrite(err)
		}

		// Create the claim.
		claim := model.NewClaim(item, user)
		if err = tx.Save(claim); err != nil {
			return lferror.StoreWrite(err)
		}

		// Backfill the claim reference.
		item.ClaimID = claim.ID
		if err = tx.Save(item); err != nil {
			return lferror.StoreWrite(err)
		}

		submission = Submission{Claim: claim, Item: item, Created: true}
		return nil
	})
	if err = storeWrite(err); err != nil {
		if errors.Is(err, lferror.ErrStoreWriteFailed) {
			logger.WithError(err).Error("could not submit claim, reservation rolled back")
		}
		return nil, err
	}

	if !submission.Created {
		logger.Info("claim already pending for this user")
		return &submission, nil
	}

	claim := submission.Claim
	logger.WithField("claim_id", claim.ID).Info("claim submitted")

	s.notify(&model.Notification{
		Audience: model.AudienceAdmin,
		Type:     model.NotificationClaimSubmitted,
		Message:  fmt.Sprintf("%s submitted a claim for %q.", claim.UserName, claim.ItemTitle),
		ClaimID:  claim.ID,
		ItemID:   submission.Item.ID,
		SenderID: user.ID,
	})
	s.feed.Changed()

	return &submission, nil
}

// Resolve approves or rejects a pending claim.
// The claim and its item are updated in the same transaction.
func (s *ClaimService) Resolve(claimID, decision, reason string, admin *model.User) (*Resolution, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, lferror.Invalid("decision must be approve or reject.")
	}

	var resolution Resolution
	err := s.db.Transaction(func(tx database.Client) error {
		claim, err := tx.FindClaim(claimID)
		if err != nil {
			if tx.IsNotFound(err) {
				return lferror.ErrClaimNotFound
			}
			return lferror.StoreRead(err)
		}
		if !claim.IsPending() {
			return lferror.ErrClaimAlreadyProcessed
		}

		item, err := tx.FindItem(claim.ItemID)
		if err != nil && !tx.IsNotFound(err) {
			return lferror.StoreRead(err)
		}
		if err != nil {
			item = nil
		}

		switch decision {
		case DecisionApprove:
			if item == nil {
				return lferror.ErrItemNotFound
			}
			if item.ClaimStatus == model.ClaimStatusClaimed && item.ClaimID != claim.ID {
				return lferror.ErrAlreadyClaimed
			}

			claim.Process(model.ClaimStatusApproved, admin.ID, "")
			item.Award(claim)

			others, err := tx.FindPendingClaimsByItemID(item.ID)
			if err != nil {
				return lferror.StoreRead(err)
			}
			for _, other := range others {
				if other.ID == claim.ID {
					continue
				}
				other.Process(model.ClaimStatusRejected, admin.ID, ReasonClaimedByAnother)
				if err = tx.Save(other); err != nil {
					return lferror.StoreWrite(err)
				}
				resolution.Closed = append(resolution.Closed, other)
			}
		case DecisionReject:
			claim.Process(model.ClaimStatusRejected, admin.ID, reason)
			if item != nil && ownedBy(item, claim) {
				item.Release()
			}
		}

		if err = tx.Save(claim); err != nil {
			return lferror.StoreWrite(err)
		}
		if item != nil {
			if err = tx.Save(item); err != nil {
				return lferror.StoreWrite(err)
			}
		}

		resolution.Claim = claim
		resolution.Item = item
		return nil
	})
	if err != nil {
		return nil, storeWrite(err)
	}

	s.logger.WithFields(logrus.Fields{
		"claim_id": claimID,
		"decision": decision,
		"admin_id": admin.ID,
		"closed":   len(resolution.Closed),
	}).Info("claim resolved")

	s.notifyClaimant(resolution.Claim, admin)
	for _, other := range resolution.Closed {
		s.notifyClaimant(other, admin)
	}
	s.feed.Changed()

	return &resolution, nil
}

// PendingClaims returns the open claims, newest first, joined with their items.
func (s *ClaimService) PendingClaims() ([]ClaimWithItem, error) {
	return s.ClaimsByStatus(model.ClaimStatusPending)
}

// ClaimsByStatus returns the claims in the given state (all claims for an empty status),
// newest first, joined with their items.
func (s *ClaimService) ClaimsByStatus(status string) ([]ClaimWithItem, error) {
	var (
		claims []*model.Claim
		err    error
	)
	if status == "" {
		claims, err = s.db.FindClaims()
	} else {
		claims, err = s.db.FindClaimsByStatus(status)
	}
	if err != nil {
		return nil, lferror.StoreRead(err)
	}

	newestFirst(claims)

	result := make([]ClaimWithItem, 0, len(claims))
	items := map[string]*model.Item{}
	for _, claim := range claims {
		item, ok := items[claim.ItemID]
		if !ok {
			item, err = s.db.FindItem(claim.ItemID)
			if err != nil && !s.db.IsNotFound(err) {
				return nil, lferror.StoreRead(err)
			}
			if err != nil {
				item = nil
			}
			items[claim.ItemID] = item
		}
		result = append(result, ClaimWithItem{Claim: claim, Item: item})
	}
	return result, nil
}

// UserClaims returns the claims submitted by the given user, newest first.
func (s *ClaimService) UserClaims(user *model.User) ([]*model.Claim, error) {
	claims, err := s.db.FindClaimsByUserID(user.ID)
	if err != nil {
		return nil, lferror.StoreRead(err)
	}
	return newestFirst(claims), nil
}

func (s *ClaimService) notifyClaimant(claim *model.Claim, admin *model.User) {
	notification := &model.Notification{
		Audience: claim.UserID,
		ClaimID:  claim.ID,
		ItemID:   claim.ItemID,
		SenderID: admin.ID,
	}

	switch claim.ClaimStatus {
	case model.ClaimStatusApproved:
		notification.Type = model.NotificationClaimApproved
		notification.Message = fmt.Sprintf("Your claim for %q has been approved.", claim.ItemTitle)
	case model.ClaimStatusRejected:
		notification.Type = model.NotificationClaimRejected
		notification.Message = fmt.Sprintf("Your claim for %q has been rejected.", claim.ItemTitle)
		if claim.Reason != "" {
			notification.Message += " Reason: " + claim.Reason
		}
	default:
		return
	}

	s.notify(notification)
}

func (s *ClaimService) notify(notification *model.Notification) {
	if err := s.notifier.Notify(notification); err != nil {
		s.logger.WithError(err).WithField("type", notification.Type).Error("could not notify")
	}
}

// pendingClaimOf returns the pending claim of the user on the item, or nil.
func pendingClaimOf(tx database.Client, item *model.Item, userID string) (*model.Claim, error) {
	if item.ClaimID != "" {
		claim, err := tx.FindClaim(item.ClaimID)
		if err == nil && claim.IsPending() && claim.UserID == userID {
			return claim, nil
		}
		if err != nil && !tx.IsNotFound(err) {
			return nil, err
		}
	}

	claims, err := tx.FindPendingClaimsByItemID(item.ID)
	if err != nil {
		return nil, err
	}
	for _, claim := range claims {
		if claim.UserID == userID {
			return claim, nil
		}
	}
	return nil, nil
}

// ownedBy returns true if the item reservation belongs to the given claim.
func ownedBy(item *model.Item, claim *model.Claim) bool {
	if item.ClaimStatus != model.ClaimStatusPending {
		return false
	}
	if item.ClaimID != "" {
		return item.ClaimID == claim.ID
	}
	return item.HeldBy(claim.UserID)
}

func newestFirst(claims []*model.Claim) []*model.Claim {
	sort.SliceStable(claims, func(i, j int) bool {
		if claims[i].ClaimedAt.Equal(claims[j].ClaimedAt) {
			return claims[i].ID < claims[j].ID
		}
		return claims[i].ClaimedAt.After(claims[j].ClaimedAt)
	})
	return claims
}
