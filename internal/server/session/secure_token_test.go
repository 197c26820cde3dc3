package session_test

import (
	"regexp"
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/server/session"
	"github.com/stretchr/testify/assert"
)

func TestSecureToken(t *testing.T) {
	assert.Panics(t, func() { session.SecureToken(-1) })
	assert.Len(t, session.SecureToken(48), 48)
	assert.Regexp(t, regexp.MustCompile(`^[123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz]+$`), session.SecureToken(48))

	n := 8192
	h := make(map[string]bool, 0)
	for i := 0; i < n; i++ {
		h[session.SecureToken(48)] = true
	}
	assert.Len(t, h, n, "tokens must be unique")
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, session.SecureCompare("123456789", "123456789"))
	assert.False(t, session.SecureCompare("123456789", "123456780"))
}
