package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// ReviewHandler exposes review CRUD, nested under tours for list/create.
type ReviewHandler struct {
	*CRUD[domain.Review]
}

func NewReviewHandler(reviews ports.ReviewRepository) *ReviewHandler {
	h := &ReviewHandler{CRUD: NewCRUD[domain.Review](reviews, "review")}

	// Nested route scoping: GET /tours/:tourId/reviews lists one tour's
	// reviews only.
	h.BeforeList = func(c echo.Context, q *ports.ListQuery) {
		if tourID := c.Param("tourId"); tourID != "" {
			if oid, err := primitive.ObjectIDFromHex(tourID); err == nil {
				q.Filter["tour"] = oid
			}
		}
	}

	// Tour and user default from the path and the session when the body
	// omits them.
	h.BeforeCreate = func(c echo.Context, review *domain.Review) error {
		if tourID := c.Param("tourId"); tourID != "" && review.Tour.IsZero() {
			oid, err := primitive.ObjectIDFromHex(tourID)
			if err != nil {
				return &domain.CastError{Field: "tour", Value: tourID}
			}
			review.Tour = oid
		}
		if user := middleware.CurrentUser(c); user != nil && review.User.IsZero() {
			review.User = user.ID
		}
		now := time.Now().UTC()
		review.CreatedAt = now
		review.UpdatedAt = now
		return nil
	}

	return h
}
