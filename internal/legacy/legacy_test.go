package legacy_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/legacy"
	"github.com/Kapsk2801/Lost-Found/internal/logging"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `{
  "userProfiles": {
    "uid-jane": {"email": "Jane@Campus.edu", "firstName": "Jane", "lastName": "Doe", "sapId": "500091", "gender": "Female", "createdAt": {"seconds": 1709283600, "nanoseconds": 0}}
  },
  "items": {
    "item-lost": {"itemName": "Blue wallet", "description": "Leather", "location": "Library", "date": "2024-03-01", "isLost": true, "timestamp": "2024-03-01T09:00:00.000Z"},
    "item-found": {"title": "Red umbrella", "category": "Other", "isLost": false, "isFound": true, "status": "found", "imageUrl": "https://cdn.example.com/u.jpg", "timestamp": "3/2/2024 10:30"},
    "item-claimed": {"title": "Keys", "status": "claimed", "claimStatus": "claimed", "claimedBy": "uid-jane", "claimId": "claim-1", "isFound": true},
    "item-broken": {"title": "Phone", "claimStatus": "pending", "isFound": true},
    "not-a-doc": 42
  },
  "claims": {
    "claim-1": {"itemId": "item-claimed", "userId": "uid-jane", "claimStatus": "approved", "claimDate": {"_seconds": 1709370000, "_nanoseconds": 5}, "userName": "Jane Doe", "userEmail": "jane@campus.edu", "userRollNo": "500091", "itemTitle": "Keys"}
  }
}`

func TestParse(t *testing.T) {
	e, err := legacy.Parse([]byte(export))
	require.NoError(t, err)

	require.Len(t, e.Users, 1)
	user := e.Users[0]
	assert.Equal(t, "uid-jane", user.ID)
	assert.Equal(t, "jane@campus.edu", user.Email)
	assert.Equal(t, "500091", user.RollNo)
	assert.Equal(t, "female", user.Gender)
	assert.Equal(t, model.RoleUser, user.Role)
	require.NotNil(t, user.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *user.CreatedAt)

	require.Len(t, e.Items, 4)
	items := map[string]*model.Item{}
	for _, item := range e.Items {
		items[item.ID] = item
	}

	lost := items["item-lost"]
	assert.Equal(t, "Blue wallet", lost.Title)
	assert.Equal(t, model.ReportLost, lost.ReportType)
	assert.Equal(t, model.StatusLost, lost.Status)
	assert.Equal(t, model.ClaimStatusUnclaimed, lost.ClaimStatus)
	assert.Equal(t, "other", lost.Category)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *lost.CreatedAt)

	found := items["item-found"]
	assert.Equal(t, model.ReportFound, found.ReportType)
	assert.Equal(t, model.StatusAvailable, found.Status)
	assert.Equal(t, "https://cdn.example.com/u.jpg", found.ImageRef)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC), *found.CreatedAt)

	claimed := items["item-claimed"]
	assert.Equal(t, model.StatusClaimed, claimed.Status)
	assert.Equal(t, "claim-1", claimed.ClaimID)
	assert.True(t, claimed.Consistent())
	assert.False(t, items["item-broken"].Consistent())

	require.Len(t, e.Claims, 1)
	claim := e.Claims[0]
	assert.Equal(t, model.ClaimStatusApproved, claim.ClaimStatus)
	assert.Equal(t, "item-claimed", claim.ItemID)
	assert.Equal(t, "500091", claim.UserRollNo)
	assert.Equal(t, time.Unix(1709370000, 5).UTC(), claim.ClaimedAt)
}

func TestParseInvalid(t *testing.T) {
	_, err := legacy.Parse([]byte(`[]`))
	assert.Error(t, err)

	_, err = legacy.Parse([]byte(`{"items": []}`))
	assert.Error(t, err)

	_, err = legacy.Parse([]byte(`{"items": {"x": {"image": "data:image/png,raw"}}}`))
	assert.Error(t, err)

	e, err := legacy.Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, e.Items)
}

func TestImport(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lostfound.db")
	require.NoError(t, database.StormInit(filename))
	db, err := database.StormOpen(filename)
	require.NoError(t, err)
	defer db.Close()

	store, err := storage.NewLocal(t.TempDir(), storage.LocalURLPrefix)
	require.NoError(t, err)

	// Another account already owns the email of the imported profile.
	other := &model.User{Email: "bob@campus.edu"}
	require.NoError(t, db.Save(other))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	data := fmt.Sprintf(`{
  "userProfiles": {"uid-bob": {"email": "bob@campus.edu"}, "uid-jane": {"email": "jane@campus.edu"}},
  "items": {
    "item-1": {"itemName": "Wallet", "isFound": true, "imageData": "data:image/png;base64,%s"},
    "item-2": {"itemName": "Phone", "isFound": true, "claimStatus": "pending"}
  },
  "claims": {"claim-1": {"itemId": "item-1", "userId": "uid-jane", "claimStatus": "pending"}}
}`, base64.StdEncoding.EncodeToString(buf.Bytes()))

	importer := legacy.NewImporter(db, imaging.NewProcessor(0, 0), store, logging.Discard())
	for i := 0; i < 2; i++ {
		report, err := importer.Import(context.Background(), []byte(data))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Users)
		assert.Equal(t, 2, report.Items)
		assert.Equal(t, 1, report.Claims)
		assert.Equal(t, 1, report.Images)
		assert.Equal(t, []string{"uid-bob"}, report.Skipped)
		assert.Equal(t, []string{"item-2"}, report.Inconsistent)
	}

	items, err := db.FindItems()
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, err := db.FindItem("item-1")
	require.NoError(t, err)
	assert.Equal(t, "/images/items/item-1.jpg", item.ImageRef)

	claim, err := db.FindClaim("claim-1")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusPending, claim.ClaimStatus)

	jane, err := db.FindUserByMail("jane@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "uid-jane", jane.ID)
}
