package serializer

import (
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/service"
)

// Claim serializes the render of a claim.
func Claim(m *model.Claim) map[string]any {
	return map[string]any{
		"id":           m.ID,
		"created_at":   m.CreatedAt,
		"item_id":      m.ItemID,
		"user_id":      m.UserID,
		"claim_status": m.ClaimStatus,
		"claimed_at":   m.ClaimedAt,
		"processed_at": m.ProcessedAt,
		"reason":       m.Reason,
		"user": map[string]any{
			"name":       m.UserName,
			"email":      m.UserEmail,
			"phone":      m.UserPhone,
			"department": m.UserDepartment,
			"roll_no":    m.UserRollNo,
		},
		"item": map[string]any{
			"title":    m.ItemTitle,
			"category": m.ItemCategory,
			"location": m.ItemLocation,
		},
	}
}

// Claims serializes the render of claims.
func Claims(m []*model.Claim) []map[string]any {
	claims := make([]map[string]any, len(m))
	for i, c := range m {
		claims[i] = Claim(c)
	}
	return claims
}

// ClaimsWithItem serializes the claims of the triage view.
func ClaimsWithItem(m []service.ClaimWithItem, viewer *model.User) []map[string]any {
	claims := make([]map[string]any, len(m))
	for i, c := range m {
		claims[i] = Claim(c.Claim)
		if c.Item != nil {
			claims[i]["current_item"] = Item(c.Item, viewer)
		}
	}
	return claims
}

// Submission serializes the outcome of a claim submission.
func Submission(m *service.Submission, viewer *model.User) map[string]any {
	return map[string]any{
		"created": m.Created,
		"claim":   Claim(m.Claim),
		"item":    Item(m.Item, viewer),
	}
}

// Resolution serializes the outcome of a claim resolution.
func Resolution(m *service.Resolution, viewer *model.User) map[string]any {
	r := map[string]any{
		"claim":  Claim(m.Claim),
		"closed": Claims(m.Closed),
	}
	if m.Item != nil {
		r["item"] = Item(m.Item, viewer)
	}
	return r
}
