package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// stubAuth resolves exactly one token to one user; everything else fails.
type stubAuth struct {
	token string
	user  *domain.User
}

func (s *stubAuth) ResolveUser(_ context.Context, token string) (*domain.User, error) {
	if token == s.token {
		return s.user, nil
	}
	return nil, domain.ErrTokenInvalid
}

func (s *stubAuth) Signup(context.Context, ports.SignupInput) (*domain.User, string, error) {
	return nil, "", errors.New("not implemented")
}
func (s *stubAuth) Login(context.Context, string, string) (*domain.User, string, error) {
	return nil, "", errors.New("not implemented")
}
func (s *stubAuth) IssueToken(string) (string, error) { return "", errors.New("not implemented") }
func (s *stubAuth) VerifyToken(string) (*ports.TokenClaims, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuth) ForgotPassword(context.Context, string, string) error {
	return errors.New("not implemented")
}
func (s *stubAuth) ResetPassword(context.Context, string, string, string) (*domain.User, string, error) {
	return nil, "", errors.New("not implemented")
}
func (s *stubAuth) UpdatePassword(context.Context, string, string, string, string) (*domain.User, string, error) {
	return nil, "", errors.New("not implemented")
}

func testUser(role string) *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Test", Role: role, Active: true}
}

func TestProtect_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(&stubAuth{})(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 AppError, got %v", err)
	}
	if appErr.Message != "You are not logged in! Please login to get access" {
		t.Fatalf("unexpected message: %q", appErr.Message)
	}
}

func TestProtect_BearerHeader(t *testing.T) {
	auth := &stubAuth{token: "valid-token", user: testUser(domain.RoleUser)}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Protect(auth)(func(c echo.Context) error {
		called = true
		if CurrentUser(c) != auth.user {
			t.Fatalf("expected user attached to context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestProtect_CookieFallback(t *testing.T) {
	auth := &stubAuth{token: "cookie-token", user: testUser(domain.RoleUser)}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(auth)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestProtect_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(&stubAuth{token: "other"})(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid passthrough, got %v", err)
	}
}

func TestIsLoggedIn_SwallowsFailures(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "garbage"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := IsLoggedIn(&stubAuth{token: "other"})(func(c echo.Context) error {
		if CurrentUser(c) != nil {
			t.Fatalf("expected anonymous request")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("rendered pages must never reject: %v", err)
	}
}

func TestIsLoggedIn_AttachesUser(t *testing.T) {
	auth := &stubAuth{token: "valid", user: testUser(domain.RoleUser)}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := IsLoggedIn(auth)(func(c echo.Context) error {
		if CurrentUser(c) != auth.user {
			t.Fatalf("expected user attached")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}
