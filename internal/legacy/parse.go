// Package legacy imports the JSON export of the previous document store.
//
// The export is a single object holding one collection per record type,
// each collection mapping document ids to documents:
//
//	{"items": {id: doc}, "claims": {id: doc}, "userProfiles": {uid: doc}}
//
// Field names and value shapes drifted over time so every read goes through
// a normalizer that accepts the known variants.
package legacy

import (
	"encoding/base64"
	"sort"
	"strings"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// An Export is the normalized content of a legacy export.
type Export struct {
	Users  []*model.User
	Items  []*model.Item
	Claims []*model.Claim
	// Images holds the inlined pictures by item id.
	Images map[string][]byte
}

// Parse normalizes the given legacy export.
func Parse(data []byte) (*Export, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse export")
	}
	if root.Type() != fastjson.TypeObject {
		return nil, errors.New("export must be a JSON object")
	}

	export := &Export{Images: map[string][]byte{}}

	err = visit(root, "userProfiles", func(id string, doc *fastjson.Value) error {
		export.Users = append(export.Users, parseUser(id, doc))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = visit(root, "items", func(id string, doc *fastjson.Value) error {
		item, image, err := parseItem(id, doc)
		if err != nil {
			return errors.Wrapf(err, "item %s", id)
		}
		export.Items = append(export.Items, item)
		if image != nil {
			export.Images[id] = image
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = visit(root, "claims", func(id string, doc *fastjson.Value) error {
		export.Claims = append(export.Claims, parseClaim(id, doc))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return export, nil
}

// visit calls fn for each document of the collection, sorted by id.
func visit(root *fastjson.Value, collection string, fn func(id string, doc *fastjson.Value) error) error {
	v := root.Get(collection)
	if v == nil || v.Type() == fastjson.TypeNull {
		return nil
	}

	o, err := v.Object()
	if err != nil {
		return errors.Wrapf(err, "%s must be an object", collection)
	}

	var ids []string
	docs := map[string]*fastjson.Value{}
	o.Visit(func(key []byte, doc *fastjson.Value) {
		if doc.Type() != fastjson.TypeObject {
			return
		}
		id := string(key)
		ids = append(ids, id)
		docs[id] = doc
	})
	sort.Strings(ids)

	for _, id := range ids {
		if err := fn(id, docs[id]); err != nil {
			return err
		}
	}
	return nil
}

func parseUser(id string, doc *fastjson.Value) *model.User {
	user := model.NewUser()
	user.ID = id
	user.Email = strings.ToLower(str(doc, "email"))
	user.FirstName = str(doc, "firstName")
	user.LastName = str(doc, "lastName")
	user.Phone = str(doc, "phone", "phoneNumber")
	user.Department = str(doc, "department", "course")
	user.RollNo = str(doc, "rollNo", "sapId")
	user.Gender = strings.ToLower(str(doc, "gender"))
	if str(doc, "role") == model.RoleAdmin || doc.GetBool("isAdmin") {
		user.Role = model.RoleAdmin
	}
	user.CreatedAt = timestamp(doc, "createdAt")
	user.UpdatedAt = timestamp(doc, "updatedAt")
	return user
}

func parseItem(id string, doc *fastjson.Value) (*model.Item, []byte, error) {
	item := model.NewItem(reportType(doc))
	item.ID = id
	item.Title = str(doc, "title", "itemName")
	item.Description = str(doc, "description")
	item.Category = strings.ToLower(str(doc, "category"))
	if item.Category == "" {
		item.Category = "other"
	}
	item.Location = str(doc, "location")
	item.OccurredOn = str(doc, "date")
	item.ReporterID = str(doc, "reporterId", "userId")
	item.ReporterName = str(doc, "reporterName")
	item.ContactEmail = str(doc, "contactEmail")
	item.CreatedAt = timestamp(doc, "timestamp", "createdAt")

	item.ClaimStatus = claimStatus(str(doc, "claimStatus"), model.ClaimStatusUnclaimed)
	item.ClaimedBy = str(doc, "claimedBy")
	item.ClaimID = str(doc, "claimId")

	switch status := str(doc, "status"); status {
	case model.StatusLost, model.StatusFound, model.StatusAvailable, model.StatusClaimed:
		item.Status = status
	}
	if item.ClaimStatus == model.ClaimStatusClaimed {
		item.Status = model.StatusClaimed
	}
	if item.Status == model.StatusFound && item.ReportType == model.ReportFound {
		// Found reports were stored with a found status before triage existed.
		item.Status = model.StatusAvailable
	}

	image, ref, err := picture(str(doc, "imageData", "imageUrl", "image"))
	if err != nil {
		return nil, nil, err
	}
	item.ImageRef = ref
	return item, image, nil
}

func parseClaim(id string, doc *fastjson.Value) *model.Claim {
	claim := &model.Claim{
		ItemID:         str(doc, "itemId"),
		UserID:         str(doc, "userId"),
		ClaimStatus:    claimStatus(str(doc, "claimStatus", "status"), model.ClaimStatusPending),
		ProcessedAt:    timestamp(doc, "processedAt"),
		ProcessedBy:    str(doc, "processedBy"),
		Reason:         str(doc, "reason", "rejectionReason"),
		UserName:       str(doc, "userName"),
		UserEmail:      str(doc, "userEmail"),
		UserPhone:      str(doc, "userPhone"),
		UserDepartment: str(doc, "userDepartment"),
		UserRollNo:     str(doc, "userRollNo", "userSapId"),
		ItemTitle:      str(doc, "itemTitle", "itemName"),
		ItemCategory:   str(doc, "itemCategory"),
		ItemLocation:   str(doc, "itemLocation"),
	}
	claim.ID = id

	if t := timestamp(doc, "claimDate", "timestamp"); t != nil {
		claim.ClaimedAt = *t
		claim.CreatedAt = t
	}
	return claim
}

func reportType(doc *fastjson.Value) string {
	switch {
	case doc.GetBool("isFound"):
		return model.ReportFound
	case doc.GetBool("isLost"):
		return model.ReportLost
	case str(doc, "status") == model.StatusFound:
		return model.ReportFound
	case str(doc, "type", "reportType") == model.ReportFound:
		return model.ReportFound
	default:
		return model.ReportLost
	}
}

func claimStatus(s, fallback string) string {
	switch s = strings.ToLower(s); s {
	case model.ClaimStatusUnclaimed, model.ClaimStatusPending, model.ClaimStatusClaimed,
		model.ClaimStatusApproved, model.ClaimStatusRejected:
		return s
	default:
		return fallback
	}
}

// str returns the first non-empty string found under the given keys.
func str(doc *fastjson.Value, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(string(doc.GetStringBytes(key))); s != "" {
			return s
		}
	}
	return ""
}

// timestamp returns the first readable time found under the given keys.
// ISO strings, free-form dates, epoch milliseconds and {seconds, nanoseconds} objects are accepted.
func timestamp(doc *fastjson.Value, keys ...string) *time.Time {
	for _, key := range keys {
		if t, ok := parseTime(doc.Get(key)); ok {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseTime(v *fastjson.Value) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}

	switch v.Type() {
	case fastjson.TypeString:
		s := strings.TrimSpace(string(v.GetStringBytes()))
		if s == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		return t, err == nil
	case fastjson.TypeNumber:
		ms, err := v.Int64()
		return time.UnixMilli(ms), err == nil
	case fastjson.TypeObject:
		for _, prefix := range []string{"", "_"} {
			if !v.Exists(prefix + "seconds") {
				continue
			}
			return time.Unix(v.GetInt64(prefix+"seconds"), v.GetInt64(prefix+"nanoseconds")), true
		}
	}
	return time.Time{}, false
}

// picture splits an image field into inlined data or a remote reference.
func picture(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, s, nil
	}

	i := strings.Index(s, ",")
	if i < 0 || !strings.HasSuffix(s[:i], ";base64") {
		return nil, "", errors.New("unsupported inline image encoding")
	}

	data, err := base64.StdEncoding.DecodeString(s[i+1:])
	if err != nil {
		return nil, "", errors.Wrap(err, "could not decode inline image")
	}
	return data, "", nil
}
