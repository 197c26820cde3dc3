package server_test

import (
	"net/http"
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/appleboy/gofight/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestNotifications(t *testing.T) {
	f := setup(t)
	admin := f.createUser(t, "desk@campus.edu", model.RoleAdmin)
	jane := f.createUser(t, "jane@campus.edu", model.RoleUser)
	item := f.createItem(t, model.ReportFound)

	gofight.New().POST("/api/items/"+item.ID+"/claim").SetHeader(f.authorization(t, jane)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	var id string
	gofight.New().GET("/api/notifications").SetHeader(f.authorization(t, admin)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v := parse(t, r.Body.String())
		assert.Equal(t, 1, v.GetInt("unread"))
		assert.Equal(t, "claim_submitted", string(v.GetStringBytes("notifications", "0", "type")))
		id = string(v.GetStringBytes("notifications", "0", "id"))
	})
	require.NotEmpty(t, id)

	gofight.New().POST("/api/notifications/"+id+"/read").SetHeader(f.authorization(t, jane)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	gofight.New().POST("/api/notifications/"+id+"/read").SetHeader(f.authorization(t, admin)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.True(t, parse(t, r.Body.String()).GetBool("notification", "read"))
	})

	gofight.New().POST("/api/notifications/read").SetHeader(f.authorization(t, jane)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})
}

func TestRequestChat(t *testing.T) {
	f := setup(t)
	admin := f.createUser(t, "desk@campus.edu", model.RoleAdmin)
	jane := f.createUser(t, "jane@campus.edu", model.RoleUser)
	item := f.createItem(t, model.ReportFound)

	gofight.New().POST("/api/messages").
		SetHeader(f.authorization(t, jane)).
		SetJSON(gofight.D{"text": "Is this my wallet?", "shared_item_id": item.ID}).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusCreated, r.Code)

			v := parse(t, r.Body.String())
			assert.Equal(t, jane.ID, string(v.GetStringBytes("message", "thread_id")))
			assert.False(t, v.GetBool("message", "from_admin"))
		})

	gofight.New().GET("/api/admin/threads").SetHeader(f.authorization(t, admin)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		threads := parse(t, r.Body.String()).GetArray("threads")
		require.Len(t, threads, 1)
		assert.Equal(t, "jane@campus.edu", string(threads[0].GetStringBytes("email")))
		assert.Equal(t, 1, threads[0].GetInt("unread"))
	})

	gofight.New().POST("/api/messages").
		SetHeader(f.authorization(t, admin)).
		SetJSON(gofight.D{"thread_id": jane.ID, "text": "Come to the desk."}).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusCreated, r.Code)
		})

	gofight.New().GET("/api/messages").SetHeader(f.authorization(t, jane)).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		messages := parse(t, r.Body.String()).GetArray("messages")
		require.Len(t, messages, 2)
		assert.True(t, messages[1].GetBool("from_admin"))
	})

	gofight.New().GET("/api/messages").
		SetHeader(f.authorization(t, admin)).
		Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnprocessableEntity, r.Code)
		})
}
