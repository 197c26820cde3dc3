package serializer

import (
	"github.com/Kapsk2801/Lost-Found/internal/feed"
	"github.com/Kapsk2801/Lost-Found/internal/model"
)

// Item serializes the render of an item.
// Contact details are only rendered for administrators and the reporter.
func Item(m *model.Item, viewer *model.User) map[string]any {
	r := map[string]any{
		"id":            m.ID,
		"created_at":    m.CreatedAt,
		"updated_at":    m.UpdatedAt,
		"title":         m.Title,
		"description":   m.Description,
		"category":      m.Category,
		"location":      m.Location,
		"type":          m.ReportType,
		"date":          m.OccurredOn,
		"image_url":     m.ImageRef,
		"status":        m.Status,
		"claim_status":  m.ClaimStatus,
		"label":         feed.Label(m),
		"reporter_name": m.ReporterName,
		"found_at":      m.FoundAt,
	}

	if viewer.IsAdmin() || (viewer != nil && viewer.ID == m.ReporterID) {
		r["reporter_id"] = m.ReporterID
		r["contact_email"] = m.ContactEmail
		r["claimed_by"] = m.ClaimedBy
		r["claim_id"] = m.ClaimID
	}
	if viewer != nil && m.HeldBy(viewer.ID) {
		r["claimed_by"] = m.ClaimedBy
		r["claim_id"] = m.ClaimID
	}
	return r
}

// Cards serializes a feed projection.
func Cards(cards []feed.Card, viewer *model.User) []map[string]any {
	r := make([]map[string]any, len(cards))
	for i, card := range cards {
		r[i] = Item(card.Item, viewer)
		r[i]["label"] = card.Label
	}
	return r
}
