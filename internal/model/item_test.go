package model_test

import (
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNewItem(t *testing.T) {
	found := model.NewItem(model.ReportFound)
	assert.Equal(t, model.StatusAvailable, found.Status)
	assert.Equal(t, model.ClaimStatusUnclaimed, found.ClaimStatus)
	assert.True(t, found.Consistent())

	lost := model.NewItem(model.ReportLost)
	assert.Equal(t, model.StatusLost, lost.Status)
	assert.True(t, lost.Consistent())
}

func TestItemLifecycle(t *testing.T) {
	item := model.NewItem(model.ReportFound)
	item.ID = "item"

	item.Reserve("user-1")
	assert.Equal(t, model.ClaimStatusPending, item.ClaimStatus)
	assert.True(t, item.HeldBy("user-1"))
	assert.False(t, item.HeldBy("user-2"))
	assert.True(t, item.Consistent())

	claim := &model.Claim{UserID: "user-1"}
	claim.ID = "claim"
	item.Award(claim)
	assert.Equal(t, model.StatusClaimed, item.Status)
	assert.Equal(t, model.ClaimStatusClaimed, item.ClaimStatus)
	assert.Equal(t, "claim", item.ClaimID)
	assert.True(t, item.Consistent())

	item.Release()
	assert.Equal(t, model.StatusAvailable, item.Status)
	assert.Equal(t, model.ClaimStatusUnclaimed, item.ClaimStatus)
	assert.Empty(t, item.ClaimedBy)
	assert.Empty(t, item.ClaimID)
	assert.True(t, item.Consistent())
}

func TestReleaseKeepsFound(t *testing.T) {
	item := model.NewItem(model.ReportLost)
	item.Status = model.StatusFound
	item.Reserve("user-1")
	item.Release()

	assert.Equal(t, model.StatusFound, item.Status)
}

func TestInconsistent(t *testing.T) {
	assert.False(t, (&model.Item{ClaimStatus: model.ClaimStatusPending}).Consistent())
	assert.False(t, (&model.Item{ClaimStatus: model.ClaimStatusClaimed, ClaimedBy: "u", Status: model.StatusAvailable}).Consistent())
	assert.False(t, (&model.Item{ClaimStatus: model.ClaimStatusUnclaimed, ClaimedBy: "u"}).Consistent())
}

func TestUser(t *testing.T) {
	user := model.NewUser()
	user.Email = "jane@campus.edu"
	assert.False(t, user.IsAdmin())
	assert.Equal(t, "jane@campus.edu", user.FullName())

	user.FirstName = "Jane"
	user.LastName = "Doe"
	user.Role = model.RoleAdmin
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "Jane Doe", user.FullName())

	var nobody *model.User
	assert.False(t, nobody.IsAdmin())
}
