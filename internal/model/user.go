package model

import "strings"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// A User represents a database record.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Email             string `json:"email"    msgpack:"email"    storm:"unique"`
	Password          string `json:"-"        msgpack:"password,omitempty"`
	PasswordUpdatedAt int64  `json:"-"        msgpack:"password_updated_at"`
	Role              string `json:"role"     msgpack:"role"     storm:"index"`

	// Profile
	FirstName  string `json:"first_name" msgpack:"first_name"`
	LastName   string `json:"last_name"  msgpack:"last_name"`
	Phone      string `json:"phone"      msgpack:"phone"`
	Department string `json:"department" msgpack:"department"`
	RollNo     string `json:"roll_no"    msgpack:"roll_no"`
	Gender     string `json:"gender"     msgpack:"gender"`
}

// NewUser returns a new user with default params.
func NewUser() *User {
	return &User{
		Role: RoleUser,
	}
}

// IsAdmin returns true if the user can triage claims.
func (m *User) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// FullName returns the display name of the user, falling back to the email.
func (m *User) FullName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Email
	}
	return name
}
