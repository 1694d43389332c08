package entity

import (
	"time"
)

// Roles a user can hold. Anything beyond admin is deliberately out of scope.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the account domain, persisted as a document.
// PasswordHash is a bcrypt digest and is never serialized to clients; the
// reset fields hold only the sha256 digest of the emailed secret.
type User struct {
	ID       string `bson:"_id" json:"id"`
	UserID   string `bson:"user_id" json:"user_id"` // short public handle
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`

	PasswordHash      string    `bson:"password" json:"-"`
	PasswordChangedAt time.Time `bson:"password_changed_at,omitempty" json:"-"`

	PasswordResetToken   string    `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpires time.Time `bson:"password_reset_expires,omitempty" json:"-"`

	Role       string `bson:"role" json:"role"`
	IsVerified bool   `bson:"is_verified" json:"is_verified"`

	Photo string `bson:"photo" json:"photo"`
	Bio   string `bson:"bio" json:"bio"`

	Active bool `bson:"active" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UpdatableFields is the fixed allow-list of fields a self-update may touch.
// Everything else on the document is owned by a dedicated flow (password
// rotation, verification, role assignment) and must not be reachable from a
// generic profile patch.
var UpdatableFields = []string{"username", "email", "bio", "photo"}

// ChangedPasswordAfter reports whether the credential was rotated after the
// given token issue time. A true result invalidates the token: rotation must
// revoke every token issued before it without a server-side revocation store.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// Compare at second precision; the stored timestamp is backdated one
	// second on write to tolerate clock skew with freshly issued tokens.
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// HasRole reports whether the user's role is in the allowed set.
func (u *User) HasRole(allowed ...string) bool {
	for _, r := range allowed {
		if u.Role == r {
			return true
		}
	}
	return false
}
