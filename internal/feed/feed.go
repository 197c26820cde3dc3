// Package feed projects the item set into the cards rendered by the browse view.
package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/model"
)

// Sort modes.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
)

// Display labels.
const (
	LabelAvailable = "Available"
	LabelInProcess = "In Process"
	LabelClaimed   = "Claimed"
)

// A Query is the serializable view state of the feed.
type Query struct {
	Text     string `json:"q"        query:"q"`
	Category string `json:"category" query:"category"`
	Status   string `json:"status"   query:"status"`
	Sort     string `json:"sort"     query:"sort"`
}

// A Card is an item as displayed in the feed.
type Card struct {
	Item  *model.Item
	Label string
}

// Normalize returns a copy of the query with unknown sort modes replaced by latest.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	if q.Sort != SortOldest {
		q.Sort = SortLatest
	}
	return q
}

// Match returns true if the item passes the query filters.
func (q Query) Match(item *model.Item) bool {
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.Status != "" && item.Status != q.Status {
		return false
	}
	if q.Text == "" {
		return true
	}

	needle := strings.ToLower(q.Text)
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) ||
		strings.Contains(strings.ToLower(item.Location), needle)
}

// Project filters and orders the given items for the given query.
// It never mutates items.
func Project(items []*model.Item, q Query) []Card {
	q = q.Normalize()

	cards := make([]Card, 0, len(items))
	for _, item := range items {
		if !q.Match(item) {
			continue
		}
		cards = append(cards, Card{Item: item, Label: Label(item)})
	}

	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i].Item, cards[j].Item
		ta, tb := created(a), created(b)
		if ta.Equal(tb) {
			return a.ID < b.ID
		}
		if q.Sort == SortOldest {
			return ta.Before(tb)
		}
		return ta.After(tb)
	})

	return cards
}

// Label returns the display label of the item's claim state.
func Label(item *model.Item) string {
	switch item.ClaimStatus {
	case model.ClaimStatusPending:
		return LabelInProcess
	case model.ClaimStatusClaimed:
		return LabelClaimed
	default:
		return LabelAvailable
	}
}

func created(item *model.Item) time.Time {
	return item.Created()
}
