package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	valid := []string{"ada@example.com", "a.b+c@sub.domain.co", "x@y.io"}
	invalid := []string{"", "bad", "no-at.example.com", "a@b", "a b@c.com", "@x.com"}

	for _, addr := range valid {
		assert.True(t, Valid(addr), addr)
	}
	for _, addr := range invalid {
		assert.False(t, Valid(addr), addr)
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "a***@example.com", Redact("ada@example.com"))
	assert.Equal(t, "not-an-email", Redact("not-an-email"))
	assert.Equal(t, "@example.com", Redact("@example.com"))
}
