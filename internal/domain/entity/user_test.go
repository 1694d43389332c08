package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChangedPasswordAfter(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	// Never rotated: any token survives.
	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(base))

	u.PasswordChangedAt = base

	assert.True(t, u.ChangedPasswordAfter(base.Add(-time.Second)), "issued before rotation")
	assert.False(t, u.ChangedPasswordAfter(base), "issued at rotation instant")
	assert.False(t, u.ChangedPasswordAfter(base.Add(time.Second)), "issued after rotation")

	// Sub-second skew inside the same second does not invalidate.
	assert.False(t, u.ChangedPasswordAfter(base.Add(500*time.Millisecond)))
	assert.False(t, u.ChangedPasswordAfter(base.Add(999*time.Millisecond)))
}

func TestHasRole(t *testing.T) {
	u := &User{Role: RoleAdmin}
	assert.True(t, u.HasRole(RoleAdmin))
	assert.True(t, u.HasRole(RoleUser, RoleAdmin))
	assert.False(t, u.HasRole(RoleUser))
	assert.False(t, u.HasRole())
}
