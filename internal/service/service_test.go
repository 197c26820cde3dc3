package service_test

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/stretchr/testify/require"
)

type signal struct {
	n atomic.Int32
}

func (s *signal) Changed() {
	s.n.Add(1)
}

type inbox struct {
	sync.Mutex
	db   database.Client
	sent []*model.Notification
}

func (i *inbox) Notify(n *model.Notification) error {
	i.Lock()
	defer i.Unlock()
	i.sent = append(i.sent, n)
	return i.db.Save(n)
}

func (i *inbox) types() []string {
	i.Lock()
	defer i.Unlock()
	r := make([]string, len(i.sent))
	for j, n := range i.sent {
		r[j] = n.Type
	}
	return r
}

func setup(t *testing.T) database.Client {
	filename := filepath.Join(t.TempDir(), "lostfound.db")
	require.NoError(t, database.StormInit(filename))

	db, err := database.StormOpen(filename)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db database.Client, email string, role string) *model.User {
	user := model.NewUser()
	user.Email = email
	user.Role = role
	user.FirstName = "First"
	user.LastName = email
	user.Phone = "+33 6 00 00 00 00"
	user.Department = "CS"
	user.RollNo = "5000" + email[:1]
	require.NoError(t, db.Save(user))
	return user
}

func createItem(t *testing.T, db database.Client, reportType string) *model.Item {
	item := model.NewItem(reportType)
	item.Title = "Blue wallet"
	item.Category = "accessories"
	item.Location = "Library"
	item.Description = "Leather wallet"
	require.NoError(t, db.Save(item))
	return item
}
