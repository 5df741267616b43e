package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

type stubRepo[T any] struct {
	docs        []T
	findQuery   ports.ListQuery
	lastUpdates map[string]any
	findErr     error
}

func (r *stubRepo[T]) Create(_ context.Context, doc *T) (*T, error) { return doc, nil }

func (r *stubRepo[T]) FindByID(_ context.Context, id string) (*T, error) {
	if len(r.docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &r.docs[0], nil
}

func (r *stubRepo[T]) Find(_ context.Context, q ports.ListQuery) ([]T, error) {
	r.findQuery = q
	return r.docs, r.findErr
}

func (r *stubRepo[T]) UpdateByID(_ context.Context, _ string, updates map[string]any) (*T, error) {
	r.lastUpdates = updates
	if len(r.docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &r.docs[0], nil
}

func (r *stubRepo[T]) DeleteByID(_ context.Context, _ string) error {
	if len(r.docs) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stubRepo[T]) Count(_ context.Context, _ map[string]any) (int64, error) {
	return int64(len(r.docs)), nil
}

func TestCRUD_GetAllEnvelope(t *testing.T) {
	repo := &stubRepo[domain.Tour]{docs: []domain.Tour{
		{ID: primitive.NewObjectID(), Name: "The Forest Hiker"},
		{ID: primitive.NewObjectID(), Name: "The Sea Explorer"},
	}}
	crud := NewCRUD[domain.Tour](repo, "tour")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours?difficulty=easy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := crud.GetAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "success" || resp["results"] != 2.0 {
		t.Fatalf("unexpected envelope: %v", resp)
	}
	data := resp["data"].(map[string]any)
	if _, ok := data["tours"]; !ok {
		t.Fatalf("expected docs keyed by plural name, got %v", data)
	}
	if repo.findQuery.Filter["difficulty"] != "easy" {
		t.Fatalf("query not passed to repository: %v", repo.findQuery.Filter)
	}
}

func TestCRUD_BeforeListScopesQuery(t *testing.T) {
	repo := &stubRepo[domain.Review]{}
	crud := NewCRUD[domain.Review](repo, "review")
	crud.BeforeList = func(c echo.Context, q *ports.ListQuery) {
		q.Filter["tour"] = "scoped"
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/abc/reviews", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := crud.GetAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if repo.findQuery.Filter["tour"] != "scoped" {
		t.Fatalf("BeforeList hook not applied: %v", repo.findQuery.Filter)
	}
}

func TestCRUD_GetOne_NotFoundPassthrough(t *testing.T) {
	crud := NewCRUD[domain.Tour](&stubRepo[domain.Tour]{}, "tour")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/ffffffffffffffffffffffff", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("ffffffffffffffffffffffff")

	if err := crud.GetOne(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound passthrough, got %v", err)
	}
}

func TestCRUD_CreateOne(t *testing.T) {
	repo := &stubRepo[domain.Tour]{}
	crud := NewCRUD[domain.Tour](repo, "tour")
	crud.BeforeCreate = func(c echo.Context, doc *domain.Tour) error {
		doc.Slug = "defaulted"
		return nil
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tours",
		strings.NewReader(`{"name":"The Park Camper","price":497}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := crud.CreateOne(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "defaulted") {
		t.Fatalf("BeforeCreate hook not applied: %s", rec.Body.String())
	}
}

func TestCRUD_UpdateOne_StripsProtectedFields(t *testing.T) {
	repo := &stubRepo[domain.User]{docs: []domain.User{{ID: primitive.NewObjectID()}}}
	crud := NewCRUD[domain.User](repo, "user")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/abc",
		strings.NewReader(`{"name":"Eve","role":"admin","password":"x","active":false,"_id":"zzz"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := crud.UpdateOne(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if repo.lastUpdates["name"] != "Eve" {
		t.Fatalf("legitimate field lost: %v", repo.lastUpdates)
	}
	for _, field := range []string{"role", "password", "active", "_id"} {
		if _, ok := repo.lastUpdates[field]; ok {
			t.Fatalf("protected field %q reached the repository", field)
		}
	}
}

func TestCRUD_DeleteOne_NoContent(t *testing.T) {
	repo := &stubRepo[domain.Tour]{docs: []domain.Tour{{ID: primitive.NewObjectID()}}}
	crud := NewCRUD[domain.Tour](repo, "tour")

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tours/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := crud.DeleteOne(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("204 must carry no body, got %q", rec.Body.String())
	}
}
