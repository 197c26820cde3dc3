package model

import "time"

// A Claim is a request by a user to take ownership of an item.
type Claim struct {
	Base `msgpack:",inline" storm:"inline"`

	ItemID      string     `json:"item_id"      msgpack:"item_id"      storm:"index"`
	UserID      string     `json:"user_id"      msgpack:"user_id"      storm:"index"`
	ClaimStatus string     `json:"claim_status" msgpack:"claim_status" storm:"index"`
	ClaimedAt   time.Time  `json:"claimed_at"   msgpack:"claimed_at"`
	ProcessedAt *time.Time `json:"processed_at" msgpack:"processed_at"`
	ProcessedBy string     `json:"processed_by" msgpack:"processed_by"`
	Reason      string     `json:"reason"       msgpack:"reason"`

	// Claimant contact, copied at submission.
	UserName       string `json:"user_name"       msgpack:"user_name"`
	UserEmail      string `json:"user_email"      msgpack:"user_email"`
	UserPhone      string `json:"user_phone"      msgpack:"user_phone"`
	UserDepartment string `json:"user_department" msgpack:"user_department"`
	UserRollNo     string `json:"user_roll_no"    msgpack:"user_roll_no"`

	// Item summary, copied at submission.
	ItemTitle    string `json:"item_title"    msgpack:"item_title"`
	ItemCategory string `json:"item_category" msgpack:"item_category"`
	ItemLocation string `json:"item_location" msgpack:"item_location"`
}

// NewClaim returns a pending claim of the given user on the given item.
func NewClaim(item *Item, user *User) *Claim {
	return &Claim{
		ItemID:         item.ID,
		UserID:         user.ID,
		ClaimStatus:    ClaimStatusPending,
		ClaimedAt:      time.Now().UTC(),
		UserName:       user.FullName(),
		UserEmail:      user.Email,
		UserPhone:      user.Phone,
		UserDepartment: user.Department,
		UserRollNo:     user.RollNo,
		ItemTitle:      item.Title,
		ItemCategory:   item.Category,
		ItemLocation:   item.Location,
	}
}

// IsPending returns true if the claim has not been processed yet.
func (m *Claim) IsPending() bool {
	return m.ClaimStatus == ClaimStatusPending
}

// Process closes the claim with the given outcome.
func (m *Claim) Process(status, adminID, reason string) {
	t := time.Now().UTC()
	m.ClaimStatus = status
	m.ProcessedAt = &t
	m.ProcessedBy = adminID
	m.Reason = reason
}
