package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/core/ports"
)

// Fields the generic update endpoint must never write: privilege escalation
// or credential changes go through their dedicated flows.
var protectedUpdateFields = map[string]struct{}{
	"_id":             {},
	"id":              {},
	"password":        {},
	"passwordConfirm": {},
	"role":            {},
	"active":          {},
}

// CRUD is the generic controller factory: one instance per entity, built on
// the entity's Repository capability.
type CRUD[T any] struct {
	repo ports.Repository[T]
	// name keys the document in the response envelope ("tour", "user", ...).
	name string

	// BeforeList mutates the parsed query before it runs, e.g. to scope
	// nested routes.
	BeforeList func(c echo.Context, q *ports.ListQuery)
	// BeforeCreate fills defaulted fields on the bound document.
	BeforeCreate func(c echo.Context, doc *T) error
}

func NewCRUD[T any](repo ports.Repository[T], name string) *CRUD[T] {
	return &CRUD[T]{repo: repo, name: name}
}

func (h *CRUD[T]) GetAll(c echo.Context) error {
	q := ParseListQuery(c)
	if h.BeforeList != nil {
		h.BeforeList(c, &q)
	}

	docs, err := h.repo.Find(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(docs),
		"data":    map[string]any{h.name + "s": docs},
	})
}

func (h *CRUD[T]) GetOne(c echo.Context) error {
	doc, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, h.name, doc)
}

func (h *CRUD[T]) CreateOne(c echo.Context) error {
	doc := new(T)
	if err := c.Bind(doc); err != nil {
		return err
	}
	if h.BeforeCreate != nil {
		if err := h.BeforeCreate(c, doc); err != nil {
			return err
		}
	}

	created, err := h.repo.Create(c.Request().Context(), doc)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusCreated, h.name, created)
}

func (h *CRUD[T]) UpdateOne(c echo.Context) error {
	updates := map[string]any{}
	if err := c.Bind(&updates); err != nil {
		return err
	}
	for field := range protectedUpdateFields {
		delete(updates, field)
	}

	doc, err := h.repo.UpdateByID(c.Request().Context(), c.Param("id"), updates)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, h.name, doc)
}

func (h *CRUD[T]) DeleteOne(c echo.Context) error {
	if err := h.repo.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func respondOne(c echo.Context, code int, name string, doc any) error {
	return c.JSON(code, map[string]any{
		"status": "success",
		"data":   map[string]any{name: doc},
	})
}
