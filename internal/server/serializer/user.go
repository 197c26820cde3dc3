package serializer

import (
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/server/session"
)

// User serializes the render of a user.
func User(m *model.User) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
		"email":      m.Email,
		"role":       m.Role,
		"name":       m.FullName(),
		"first_name": m.FirstName,
		"last_name":  m.LastName,
		"phone":      m.Phone,
		"department": m.Department,
		"roll_no":    m.RollNo,
		"gender":     m.Gender,
	}
}

// Session serializes the credentials of a session.
func Session(m *model.Session, token *session.Token) map[string]any {
	return map[string]any{
		"id":                m.ID,
		"access_token":      token.AccessToken,
		"access_expire_at":  token.ExpireAt,
		"refresh_token":     m.RefreshToken,
		"refresh_expire_at": m.ExpireAt,
	}
}

// Auth serializes the response of a sign in.
func Auth(user *model.User, m *model.Session, token *session.Token) map[string]any {
	return map[string]any{
		"user":    User(user),
		"session": Session(m, token),
	}
}
