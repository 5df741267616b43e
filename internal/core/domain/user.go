package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the fixed role enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User models an account in the system. The password hash and the reset
// token fields are never serialized to API responses.
type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	Photo                string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role                 string             `json:"role" bson:"role"`
	PasswordHash         string             `json:"-" bson:"password"`
	PasswordChangedAt    time.Time          `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires time.Time          `json:"-" bson:"passwordResetExpires,omitempty"`
	Active               bool               `json:"-" bson:"active"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

// ChangedPasswordAfter reports whether the user's password was changed after
// the given token issue time. Tokens issued before a password change are stale.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
