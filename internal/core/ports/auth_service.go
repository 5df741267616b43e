package ports

import (
	"context"
	"time"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// SignupInput is the payload accepted at signup. Role is deliberately not
// accepted here; escalation goes through admin-only updates.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	UserID   string
	IssuedAt time.Time
}

// AuthService implements signup, login, session verification, and the
// password reset and update flows.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// IssueToken signs a session token for the user id.
	IssueToken(userID string) (string, error)
	// VerifyToken checks signature and expiry, returning
	// domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	VerifyToken(token string) (*TokenClaims, error)
	// ResolveUser verifies the token, loads the user, and rejects tokens
	// issued before the user's last password change.
	ResolveUser(ctx context.Context, token string) (*domain.User, error)

	ForgotPassword(ctx context.Context, email, resetURLBase string) error
	ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, string, error)
	UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (*domain.User, string, error)
}

// RateLimiter counts requests per client key over a fixed window. Allow
// reports whether this request is within budget; implementations must be
// safe for concurrent use.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Mailer sends the transactional templates. Implementations render the
// template and deliver out-of-band.
type Mailer interface {
	SendWelcome(ctx context.Context, user *domain.User, url string) error
	SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
}

// CheckoutProvider creates hosted checkout sessions with the external
// payment collaborator.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, tour *domain.Tour, user *domain.User) (*domain.CheckoutSession, error)
}
