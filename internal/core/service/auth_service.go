package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

const resetTokenTTL = 10 * time.Minute

// AuthService implements signup, login, session tokens, and password resets.
type AuthService struct {
	users     ports.UserRepository
	mailer    ports.Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	publicURL string
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL time.Duration, publicURL string, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 90 * 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, string, error) {
	if input.Password != input.PasswordConfirm {
		return nil, "", domain.BadRequest("Passwords are not the same!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	// Welcome mail is fire-and-forget; signup must not fail on it.
	if err := s.mailer.SendWelcome(ctx, created, s.publicURL+"/me"); err != nil {
		s.log.Warn().Err(err).Str("email", created.Email).Msg("welcome email failed")
	}

	token, err := s.IssueToken(created.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", created.ID.Hex()).Msg("user signed up")
	return created, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", domain.BadRequest("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.Unauthorized("Incorrect password or email")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.Unauthorized("Incorrect password or email")
	}

	token, err := s.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a session token embedding the user id and issue time.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

// VerifyToken checks the signature and expiry of a session token.
func (s *AuthService) VerifyToken(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	id, _ := claims["id"].(string)
	if id == "" {
		return nil, domain.ErrTokenInvalid
	}
	iat, _ := claims["iat"].(float64)

	return &ports.TokenClaims{
		UserID:   id,
		IssuedAt: time.Unix(int64(iat), 0),
	}, nil
}

// ResolveUser turns a raw token into the current user, rejecting tokens for
// deleted users and tokens issued before the last password change.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("The user belonging to this token does no longer exist.")
		}
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, domain.Unauthorized("User recently changed password! Please log in again.")
	}

	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return domain.NotFound("There is no user with email address.")
		}
		return err
	}

	raw, hashed, err := newResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID.Hex(), hashed, expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", resetURLBase, raw)
	if err := s.mailer.SendPasswordReset(ctx, user, resetURL); err != nil {
		// No transactions: compensate by clearing the stored token so the
		// half-created reset cannot linger.
		if clearErr := s.users.SetResetToken(ctx, user.ID.Hex(), "", time.Time{}); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID.Hex()).Msg("failed to clear reset token")
		}
		return domain.NewAppError("There was an error sending the email. Try again later!", http.StatusInternalServerError).WithCause(err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, string, error) {
	if password != passwordConfirm {
		return nil, "", domain.BadRequest("Passwords are not the same!")
	}

	hashed := hashResetToken(rawToken)
	user, err := s.users.FindByResetToken(ctx, hashed, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.BadRequest("Token is invalid or has expired")
		}
		return nil, "", err
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return nil, "", err
	}
	if err := s.users.SetResetToken(ctx, user.ID.Hex(), "", time.Time{}); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (*domain.User, string, error) {
	if password != passwordConfirm {
		return nil, "", domain.BadRequest("Passwords are not the same!")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return nil, "", domain.Unauthorized("Your current password is wrong")
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// setPassword hashes and persists a new password. The change timestamp is
// backdated one second so a token issued in the same second stays valid.
func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Add(-time.Second)
	if err := s.users.UpdatePassword(ctx, user.ID.Hex(), string(hash), changedAt); err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = changedAt
	return nil
}

// newResetToken returns the raw token sent to the user and the SHA-256 hex
// digest persisted server-side.
func newResetToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
