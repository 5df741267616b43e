package ports

import (
	"context"
	"time"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// UserRepository defines user persistence. Find operations exclude
// soft-deleted (inactive) accounts unless noted otherwise.
type UserRepository interface {
	Repository[domain.User]

	// FindByEmail returns the user including the password hash, which normal
	// projections exclude.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByResetToken matches the hashed reset token against records whose
	// reset expiry is still in the future.
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error)

	// SetResetToken stores (or clears, with empty values) the hashed reset
	// token and its expiry.
	SetResetToken(ctx context.Context, userID string, hashedToken string, expires time.Time) error

	// UpdatePassword replaces the password hash and stamps passwordChangedAt.
	UpdatePassword(ctx context.Context, userID string, passwordHash string, changedAt time.Time) error

	// Deactivate flips the active flag off (soft delete).
	Deactivate(ctx context.Context, userID string) error
}
