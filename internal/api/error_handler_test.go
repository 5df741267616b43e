package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yash-miyani/natours/internal/core/domain"
)

func handleError(t *testing.T, isProd bool, path string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(isProd, zerolog.Nop())(err, c)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestErrorHandler_ProdOperational(t *testing.T) {
	rec := handleError(t, true, "/api/v1/tours/xyz",
		domain.NotFound("No document found with that ID"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "fail" {
		t.Fatalf("4xx must report status fail, got %v", body["status"])
	}
	if body["message"] != "No document found with that ID" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	if _, ok := body["stack"]; ok {
		t.Fatalf("production response must not carry a stack")
	}
}

func TestErrorHandler_ProdNonOperationalIsOpaque(t *testing.T) {
	rec := handleError(t, true, "/api/v1/tours", errors.New("pointer dereference in service"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "error" {
		t.Fatalf("5xx must report status error, got %v", body["status"])
	}
	if body["message"] != "Something went very wrong!" {
		t.Fatalf("internal detail leaked: %v", body["message"])
	}
	if strings.Contains(rec.Body.String(), "pointer dereference") {
		t.Fatalf("cause leaked into production response")
	}
}

func TestErrorHandler_DevExposesDiagnostics(t *testing.T) {
	rec := handleError(t, false, "/api/v1/tours", errors.New("boom"))

	body := decodeBody(t, rec)
	for _, field := range []string{"status", "error", "message", "stack"} {
		if _, ok := body[field]; !ok {
			t.Fatalf("development response missing %q: %v", field, body)
		}
	}
	if body["error"] != "boom" {
		t.Fatalf("expected raw error in dev response, got %v", body["error"])
	}
}

func TestErrorHandler_CastError(t *testing.T) {
	rec := handleError(t, true, "/api/v1/tours/notahexid",
		&domain.CastError{Field: "_id", Value: "notahexid"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Invalid _id: notahexid." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	type loginReq struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}
	err := validator.New().Struct(loginReq{Email: "nope", Password: "short"})
	if err == nil {
		t.Fatalf("expected validation failure")
	}

	rec := handleError(t, true, "/api/v1/users/login", err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	msg, _ := body["message"].(string)
	if !strings.HasPrefix(msg, "Invalid input data.") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "email must be a valid email") {
		t.Fatalf("missing email detail: %q", msg)
	}
	if !strings.Contains(msg, "password must be at least 8") {
		t.Fatalf("missing password detail: %q", msg)
	}
}

func TestErrorHandler_TokenErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrTokenInvalid, "Invalid token! Please log in again"},
		{domain.ErrTokenExpired, "Your token has expired! Please log in again"},
	}
	for _, tc := range cases {
		rec := handleError(t, true, "/api/v1/users/me", tc.err)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %v, got %d", tc.err, rec.Code)
		}
		if body := decodeBody(t, rec); body["message"] != tc.want {
			t.Fatalf("unexpected message for %v: %v", tc.err, body["message"])
		}
	}
}

func TestErrorHandler_NotFoundSentinel(t *testing.T) {
	rec := handleError(t, true, "/api/v1/tours/ffffffffffffffffffffffff", domain.ErrNotFound)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "No document found with that ID" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec := handleError(t, true, "/api/v1/users/login",
		echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "fail" {
		t.Fatalf("expected status fail, got %v", body["status"])
	}
}

func TestErrorHandler_RenderedPathGetsHTML(t *testing.T) {
	rec := handleError(t, true, "/tour/missing-tour",
		domain.NotFound("There is no tour with that name."))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Fatalf("rendered path must answer HTML, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "There is no tour with that name.") {
		t.Fatalf("message missing from page: %s", rec.Body.String())
	}
}

func TestDuplicateValueExtraction(t *testing.T) {
	err := errors.New(`E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "The Forest Hiker" }`)
	if got := duplicateValue(err); got != "The Forest Hiker" {
		t.Fatalf("expected quoted value, got %q", got)
	}
	if got := duplicateValue(errors.New("no quotes here")); got != "value" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
