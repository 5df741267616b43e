package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/api/metrics"
	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// BookingHandler exposes checkout-session creation and booking CRUD.
type BookingHandler struct {
	*CRUD[domain.Booking]
	bookings ports.BookingRepository
	tours    ports.TourRepository
	checkout ports.CheckoutProvider
}

func NewBookingHandler(bookings ports.BookingRepository, tours ports.TourRepository, checkout ports.CheckoutProvider) *BookingHandler {
	return &BookingHandler{
		CRUD:     NewCRUD[domain.Booking](bookings, "booking"),
		bookings: bookings,
		tours:    tours,
		checkout: checkout,
	}
}

// CheckoutSession creates a hosted checkout session for one tour.
//
// @Summary      Create a checkout session
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        tourId  path      string  true  "Tour id"
// @Success      200     {object}  map[string]any
// @Failure      404     {object}  map[string]string
// @Router       /api/v1/bookings/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(c echo.Context) error {
	tour, err := h.tours.FindByID(c.Request().Context(), c.Param("tourId"))
	if err != nil {
		return err
	}

	session, err := h.checkout.CreateSession(c.Request().Context(), tour, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"session": session,
	})
}

// CreateFromCheckout creates the booking when the provider's success
// redirect lands on / with tour, user, and price query parameters. It
// reports whether a booking was created so the caller can re-issue a clean
// redirect hiding the query string.
func (h *BookingHandler) CreateFromCheckout(c echo.Context) (bool, error) {
	tourParam := c.QueryParam("tour")
	userParam := c.QueryParam("user")
	priceParam := c.QueryParam("price")
	if tourParam == "" || userParam == "" || priceParam == "" {
		return false, nil
	}

	tourID, err := primitive.ObjectIDFromHex(tourParam)
	if err != nil {
		return false, &domain.CastError{Field: "tour", Value: tourParam}
	}
	userID, err := primitive.ObjectIDFromHex(userParam)
	if err != nil {
		return false, &domain.CastError{Field: "user", Value: userParam}
	}
	price, err := strconv.ParseFloat(priceParam, 64)
	if err != nil {
		return false, &domain.CastError{Field: "price", Value: priceParam}
	}

	booking := &domain.Booking{
		Tour:      tourID,
		User:      userID,
		Price:     price,
		Paid:      true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := h.bookings.Create(c.Request().Context(), booking); err != nil {
		return false, err
	}

	metrics.BookingsCreatedTotal.Inc()
	return true, nil
}
