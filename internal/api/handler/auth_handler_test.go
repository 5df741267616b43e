package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

type stubAuthService struct {
	signupFn         func(ctx context.Context, input ports.SignupInput) (*domain.User, string, error)
	loginFn          func(ctx context.Context, email, password string) (*domain.User, string, error)
	forgotFn         func(ctx context.Context, email, base string) error
	resetFn          func(ctx context.Context, token, password, confirm string) (*domain.User, string, error)
	updatePasswordFn func(ctx context.Context, userID, current, password, confirm string) (*domain.User, string, error)
}

func (s *stubAuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, string, error) {
	return s.signupFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) IssueToken(string) (string, error) { return "", errors.New("unused") }

func (s *stubAuthService) VerifyToken(string) (*ports.TokenClaims, error) {
	return nil, errors.New("unused")
}

func (s *stubAuthService) ResolveUser(context.Context, string) (*domain.User, error) {
	return nil, errors.New("unused")
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email, base string) error {
	return s.forgotFn(ctx, email, base)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*domain.User, string, error) {
	return s.resetFn(ctx, token, password, confirm)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (*domain.User, string, error) {
	return s.updatePasswordFn(ctx, userID, current, password, confirm)
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(_ context.Context, input ports.SignupInput) (*domain.User, string, error) {
			if input.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: primitive.NewObjectID(), Name: input.Name, Email: input.Email, Role: domain.RoleUser}, "token123", nil
		},
	}
	handler := NewAuthHandler(stub, 90, false, "http://localhost:3000")

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Alice","email":"alice@example.com","password":"pass1234","passwordConfirm":"pass1234"}`)

	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	if strings.Contains(rec.Body.String(), "pass1234") {
		t.Fatalf("password leaked into response")
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "token123" || !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly jwt cookie, got %+v", cookie)
	}
	if cookie.Secure {
		t.Fatalf("cookie must not be Secure outside production")
	}
}

func TestAuthHandler_Signup_SecureCookieInProduction(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(context.Context, ports.SignupInput) (*domain.User, string, error) {
			return &domain.User{ID: primitive.NewObjectID()}, "tok", nil
		},
	}
	handler := NewAuthHandler(stub, 90, true, "https://natours.io")

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Bob","email":"bob@example.com","password":"pass1234","passwordConfirm":"pass1234"}`)
	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookie := sessionCookie(rec); cookie == nil || !cookie.Secure {
		t.Fatalf("expected Secure cookie in production, got %+v", cookie)
	}
}

func TestAuthHandler_Signup_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(context.Context, ports.SignupInput) (*domain.User, string, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub, 90, false, "")

	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Bob","email":"not-an-email","password":"short","passwordConfirm":"short"}`)

	err := handler.Signup(c)
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected validation errors for the central handler, got %v", err)
	}
}

func TestAuthHandler_Login_ErrorPassthrough(t *testing.T) {
	wantErr := domain.Unauthorized("Incorrect password or email")
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.User, string, error) {
			return nil, "", wantErr
		},
	}
	handler := NewAuthHandler(stub, 90, false, "")

	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"alice@example.com","password":"badpass"}`)

	if err := handler.Login(c); !errors.Is(err, wantErr) {
		t.Fatalf("expected service error passthrough, got %v", err)
	}
}

func TestAuthHandler_Logout_OverwritesCookie(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, 90, false, "")

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/users/logout", "")
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "loggedout" {
		t.Fatalf("expected sentinel cookie, got %+v", cookie)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	called := false
	stub := &stubAuthService{
		forgotFn: func(_ context.Context, email, base string) error {
			called = true
			if email != "alice@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub, 90, false, "http://localhost:3000")

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/users/forgotPassword",
		`{"email":"alice@example.com"}`)
	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("service not called")
	}

	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Token sent to email!" {
		t.Fatalf("unexpected message: %v", resp)
	}
}

func TestAuthHandler_ResetPassword_UsesPathToken(t *testing.T) {
	stub := &stubAuthService{
		resetFn: func(_ context.Context, token, password, confirm string) (*domain.User, string, error) {
			if token != "rawtoken123" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &domain.User{ID: primitive.NewObjectID()}, "newsession", nil
		},
	}
	handler := NewAuthHandler(stub, 90, false, "")

	c, rec := newJSONContext(t, http.MethodPatch, "/api/v1/users/resetPassword/rawtoken123",
		`{"password":"newpass99","passwordConfirm":"newpass99"}`)
	c.SetParamNames("token")
	c.SetParamValues("rawtoken123")

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookie := sessionCookie(rec); cookie == nil || cookie.Value != "newsession" {
		t.Fatalf("expected fresh session cookie, got %+v", cookie)
	}
}
