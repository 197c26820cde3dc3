package model

import (
	"time"
)

// A Session represents a database record.
type Session struct {
	Base `msgpack:",inline" storm:"inline"`

	ExpireAt     time.Time `json:"expire_at"  msgpack:"expire_at"`
	UserID       string    `json:"user_id"    msgpack:"user_id"       storm:"index"`
	UserAgent    string    `json:"user_agent" msgpack:"user_agent"`
	RefreshToken string    `json:"-"          msgpack:"refresh_token" storm:"unique"`
}
