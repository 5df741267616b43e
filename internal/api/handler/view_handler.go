package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// ViewHandler renders the server-side pages. The optional-auth probe runs
// before these so templates can branch on a logged-in user.
type ViewHandler struct {
	tours    ports.TourRepository
	reviews  ports.ReviewRepository
	bookings ports.BookingRepository
	checkout *BookingHandler
}

func NewViewHandler(tours ports.TourRepository, reviews ports.ReviewRepository, bookings ports.BookingRepository, checkout *BookingHandler) *ViewHandler {
	return &ViewHandler{
		tours:    tours,
		reviews:  reviews,
		bookings: bookings,
		checkout: checkout,
	}
}

// Overview renders the tour catalogue at /. A checkout success redirect
// lands here carrying session query parameters; the booking is created
// first and the query string stripped with a clean redirect.
func (v *ViewHandler) Overview(c echo.Context) error {
	created, err := v.checkout.CreateFromCheckout(c)
	if err != nil {
		return err
	}
	if created {
		return c.Redirect(http.StatusFound, c.Request().URL.Path)
	}

	tours, err := v.tours.Find(c.Request().Context(), ports.ListQuery{})
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "overview", map[string]any{
		"title": "All Tours",
		"tours": tours,
		"user":  middleware.CurrentUser(c),
	})
}

// Tour renders /tour/:slug.
func (v *ViewHandler) Tour(c echo.Context) error {
	tour, err := v.tours.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if err == domain.ErrNotFound {
			return domain.NotFound("There is no tour with that name.")
		}
		return err
	}

	q := ports.ListQuery{Filter: map[string]any{"tour": tour.ID}}
	reviews, err := v.reviews.Find(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "tour", map[string]any{
		"title":   tour.Name + " Tour",
		"tour":    tour,
		"reviews": reviews,
		"user":    middleware.CurrentUser(c),
	})
}

// LoginForm renders /login.
func (v *ViewHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", map[string]any{
		"title": "Log into your account",
		"user":  middleware.CurrentUser(c),
	})
}

// Account renders /me for the authenticated user.
func (v *ViewHandler) Account(c echo.Context) error {
	return c.Render(http.StatusOK, "account", map[string]any{
		"title": "Your account",
		"user":  middleware.CurrentUser(c),
	})
}

// MyTours renders /my-tours, the tours the user has booked.
func (v *ViewHandler) MyTours(c echo.Context) error {
	user := middleware.CurrentUser(c)

	bookings, err := v.bookings.FindByUser(c.Request().Context(), user.ID.Hex())
	if err != nil {
		return err
	}

	tours := []domain.Tour{}
	if len(bookings) > 0 {
		ids := make([]primitive.ObjectID, 0, len(bookings))
		for _, b := range bookings {
			ids = append(ids, b.Tour)
		}
		tours, err = v.tours.Find(c.Request().Context(), ports.ListQuery{
			Filter: map[string]any{"_id": map[string]any{"in": ids}},
		})
		if err != nil {
			return err
		}
	}

	return c.Render(http.StatusOK, "overview", map[string]any{
		"title": "My Tours",
		"tours": tours,
		"user":  user,
	})
}
