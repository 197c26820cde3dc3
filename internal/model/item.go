package model

import "time"

// Report types.
const (
	ReportLost  = "lost"
	ReportFound = "found"
)

// Item statuses.
const (
	StatusLost      = "lost"
	StatusFound     = "found"
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
)

// Claim states carried by items and claims.
// An item moves between unclaimed, pending and claimed (rejected only exists in imported data).
// A claim moves from pending to approved or rejected.
const (
	ClaimStatusUnclaimed = "unclaimed"
	ClaimStatusPending   = "pending"
	ClaimStatusClaimed   = "claimed"
	ClaimStatusApproved  = "approved"
	ClaimStatusRejected  = "rejected"
)

// Categories lists the accepted item categories.
var Categories = []string{
	"electronics",
	"documents",
	"accessories",
	"keys",
	"clothing",
	"other",
}

// An Item represents a lost or found report.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	ReporterID   string     `json:"reporter_id"   msgpack:"reporter_id"   storm:"index"`
	ReporterName string     `json:"reporter_name" msgpack:"reporter_name"`
	ContactEmail string     `json:"contact_email" msgpack:"contact_email"`
	Title        string     `json:"title"         msgpack:"title"`
	Description  string     `json:"description"   msgpack:"description"`
	Category     string     `json:"category"      msgpack:"category"      storm:"index"`
	Location     string     `json:"location"      msgpack:"location"`
	ReportType   string     `json:"report_type"   msgpack:"report_type"   storm:"index"`
	OccurredOn   string     `json:"occurred_on"   msgpack:"occurred_on"`
	ImageRef     string     `json:"image_ref"     msgpack:"image_ref"`
	Status       string     `json:"status"        msgpack:"status"        storm:"index"`
	ClaimStatus  string     `json:"claim_status"  msgpack:"claim_status"  storm:"index"`
	ClaimedBy    string     `json:"claimed_by"    msgpack:"claimed_by"`
	ClaimID      string     `json:"claim_id"      msgpack:"claim_id"`
	FoundAt      *time.Time `json:"found_at"      msgpack:"found_at"`
}

// NewItem returns a new item in its initial state for the given report type.
func NewItem(reportType string) *Item {
	item := &Item{
		ReportType:  reportType,
		ClaimStatus: ClaimStatusUnclaimed,
	}
	item.Status = item.OpenStatus()
	return item
}

// OpenStatus returns the status of the item when nobody holds it.
func (m *Item) OpenStatus() string {
	if m.ReportType == ReportLost {
		return StatusLost
	}
	return StatusAvailable
}

// HeldBy returns true if the given user has a pending or accepted claim on the item.
func (m *Item) HeldBy(userID string) bool {
	return m.ClaimedBy != "" && m.ClaimedBy == userID
}

// Reserve marks the item as pending for the given user.
func (m *Item) Reserve(userID string) {
	m.ClaimStatus = ClaimStatusPending
	m.ClaimedBy = userID
	m.ClaimID = ""
}

// Release returns the item to an unclaimed state.
// A found status set by an administrator is kept.
func (m *Item) Release() {
	if m.Status != StatusFound {
		m.Status = m.OpenStatus()
	}
	m.ClaimStatus = ClaimStatusUnclaimed
	m.ClaimedBy = ""
	m.ClaimID = ""
}

// Award gives the item to the claimant of the given claim.
func (m *Item) Award(claim *Claim) {
	m.Status = StatusClaimed
	m.ClaimStatus = ClaimStatusClaimed
	m.ClaimedBy = claim.UserID
	m.ClaimID = claim.ID
}

// Consistent returns false when the claim fields of the item contradict each other.
func (m *Item) Consistent() bool {
	switch m.ClaimStatus {
	case ClaimStatusPending:
		return m.ClaimedBy != ""
	case ClaimStatusClaimed:
		return m.ClaimedBy != "" && m.Status == StatusClaimed
	case ClaimStatusUnclaimed, "":
		return m.ClaimedBy == "" && m.ClaimID == ""
	}
	return true
}
