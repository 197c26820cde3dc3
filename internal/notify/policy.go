package notify

import (
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/model"
)

// DeliveryPolicy defines the channels used for one notification type.
type DeliveryPolicy struct {
	InApp bool
	Email bool
}

// ResolveDeliveryPolicy returns the channel policy for the given notification type.
func ResolveDeliveryPolicy(notificationType string) DeliveryPolicy {
	switch strings.ToLower(strings.TrimSpace(notificationType)) {
	case model.NotificationClaimSubmitted, model.NotificationClaimApproved, model.NotificationClaimRejected:
		return DeliveryPolicy{InApp: true, Email: true}
	default:
		return DeliveryPolicy{InApp: true, Email: false}
	}
}

// Subject returns the mail subject of the given notification type.
func Subject(notificationType string) string {
	switch notificationType {
	case model.NotificationClaimSubmitted:
		return "New claim to review"
	case model.NotificationClaimApproved:
		return "Your claim has been approved"
	case model.NotificationClaimRejected:
		return "Your claim has been rejected"
	case model.NotificationNewMessage:
		return "New message"
	case model.NotificationNewComment:
		return "New comment on your report"
	default:
		return "Lost & Found notification"
	}
}
