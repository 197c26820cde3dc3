package stormsql_test

import (
	"testing"
	"time"

	"github.com/Kapsk2801/Lost-Found/pkg/stormsql"
	"github.com/asdine/storm/v3/q"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID          string
	ClaimStatus string
	Attempts    int
	CreatedAt   time.Time
}

func match(t *testing.T, m q.Matcher, r record) bool {
	ok, err := m.Match(&r)
	require.NoError(t, err)
	return ok
}

func TestParseSelect(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT * FROM claims WHERE ClaimStatus = 'pending' AND Attempts >= 2 ORDER BY CreatedAt DESC LIMIT 3, 10")
	require.NoError(t, err)

	assert.Equal(t, "claims", sc.Tablename)
	assert.Empty(t, sc.SelectedFields)
	assert.False(t, sc.Count)
	assert.Equal(t, 3, sc.Skip)
	assert.Equal(t, 10, sc.Limit)
	assert.Equal(t, []string{"CreatedAt"}, sc.OrderBy)
	assert.True(t, sc.OrderByReversed)

	assert.True(t, match(t, sc.Matcher, record{ClaimStatus: "pending", Attempts: 2}))
	assert.False(t, match(t, sc.Matcher, record{ClaimStatus: "pending", Attempts: 1}))
	assert.False(t, match(t, sc.Matcher, record{ClaimStatus: "approved", Attempts: 5}))
}

func TestParseSelectFields(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT ID, ClaimStatus FROM claims")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "ClaimStatus"}, sc.SelectedFields)
	assert.True(t, match(t, sc.Matcher, record{}))

	sc, err = stormsql.ParseSelect("SELECT count(*) FROM items")
	require.NoError(t, err)
	assert.True(t, sc.Count)
	assert.Equal(t, "items", sc.Tablename)
}

func TestParseSelectWhere(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT * FROM claims WHERE ClaimStatus IN ('pending', 'rejected') OR ID LIKE 'abc%'")
	require.NoError(t, err)

	assert.True(t, match(t, sc.Matcher, record{ClaimStatus: "rejected"}))
	assert.True(t, match(t, sc.Matcher, record{ID: "abcdef", ClaimStatus: "approved"}))
	assert.False(t, match(t, sc.Matcher, record{ID: "xabc", ClaimStatus: "approved"}))

	sc, err = stormsql.ParseSelect("SELECT * FROM claims WHERE NOT (ClaimStatus != 'pending')")
	require.NoError(t, err)
	assert.True(t, match(t, sc.Matcher, record{ClaimStatus: "pending"}))
	assert.False(t, match(t, sc.Matcher, record{ClaimStatus: "approved"}))

	sc, err = stormsql.ParseSelect("SELECT * FROM claims WHERE CreatedAt > '2024-03-01 10:00:00'")
	require.NoError(t, err)
	assert.True(t, match(t, sc.Matcher, record{CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}))
	assert.False(t, match(t, sc.Matcher, record{CreatedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)}))
}

func TestParseSelectErrors(t *testing.T) {
	for _, sql := range []string{
		"DELETE FROM claims",
		"SELECT * FROM",
		"SELECT max(Attempts) FROM claims",
		"SELECT * FROM claims WHERE 1 = ClaimStatus",
		"SELECT * FROM claims LIMIT 'a'",
		"SELECT * FROM claims, items",
	} {
		_, err := stormsql.ParseSelect(sql)
		assert.Error(t, err, sql)
	}
}
