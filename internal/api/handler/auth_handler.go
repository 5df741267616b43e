package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/api/metrics"
	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

const sessionCookieName = "jwt"

// AuthHandler exposes signup, login, logout, and the password flows.
type AuthHandler struct {
	auth         ports.AuthService
	cookieTTL    time.Duration
	secureCookie bool
	publicURL    string
}

func NewAuthHandler(auth ports.AuthService, cookieDays int, secureCookie bool, publicURL string) *AuthHandler {
	if cookieDays <= 0 {
		cookieDays = 90
	}
	return &AuthHandler{
		auth:         auth,
		cookieTTL:    time.Duration(cookieDays) * 24 * time.Hour,
		secureCookie: secureCookie,
		publicURL:    publicURL,
	}
}

type signupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// Signup registers a new account and logs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.Signup(c.Request().Context(), ports.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}

	metrics.SignupsTotal.Inc()
	return h.sendToken(c, http.StatusCreated, user, token)
}

// Login authenticates with email and password.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginFailuresTotal.Inc()
		return err
	}

	return h.sendToken(c, http.StatusOK, user, token)
}

// Logout overwrites the session cookie with a sentinel and a near-immediate
// expiry. The token itself stays cryptographically valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Path:     "/",
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// ForgotPassword emails a reset link to the given address.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email, h.publicURL); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

// ResetPassword sets a new password from an emailed reset token and logs
// the user in.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return h.sendToken(c, http.StatusOK, user, token)
}

// UpdatePassword changes the logged-in user's password and reissues the
// session.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	updated, token, err := h.auth.UpdatePassword(c.Request().Context(), user.ID.Hex(), req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return h.sendToken(c, http.StatusOK, updated, token)
}

// sendToken attaches the session cookie and renders the token envelope. The
// cookie expiry is deliberately distinct from the token expiry.
func (h *AuthHandler) sendToken(c echo.Context, code int, user *domain.User, token string) error {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		Path:     "/",
	})

	return c.JSON(code, map[string]any{
		"status": "success",
		"token":  token,
		"data":   map[string]any{"user": user},
	})
}
