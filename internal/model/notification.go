package model

// AudienceAdmin addresses a notification to every administrator.
const AudienceAdmin = "admin"

// Notification types.
const (
	NotificationClaimSubmitted = "claim_submitted"
	NotificationClaimApproved  = "claim_approved"
	NotificationClaimRejected  = "claim_rejected"
	NotificationNewMessage     = "new_message"
	NotificationNewComment     = "new_comment"
)

// A Notification is an in-app message addressed to a user or to the administrators.
type Notification struct {
	Base `msgpack:",inline" storm:"inline"`

	Audience  string `json:"audience"   msgpack:"audience"   storm:"index"`
	Type      string `json:"type"       msgpack:"type"       storm:"index"`
	Message   string `json:"message"    msgpack:"message"`
	ClaimID   string `json:"claim_id"   msgpack:"claim_id"`
	ItemID    string `json:"item_id"    msgpack:"item_id"`
	MessageID string `json:"message_id" msgpack:"message_id"`
	SenderID  string `json:"sender_id"  msgpack:"sender_id"`
	Read      bool   `json:"read"       msgpack:"read"       storm:"index"`
}
