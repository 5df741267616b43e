package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// Earth radii used to convert a surface distance to radians for the
// centre-sphere query.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1

	metersToMiles = 0.000621371
	metersToKm    = 0.001
)

// TourHandler exposes tour CRUD plus the aggregation and geospatial queries.
type TourHandler struct {
	*CRUD[domain.Tour]
	tours  ports.TourRepository
	images ImageProcessor
}

func NewTourHandler(tours ports.TourRepository, images ImageProcessor) *TourHandler {
	h := &TourHandler{
		CRUD:   NewCRUD[domain.Tour](tours, "tour"),
		tours:  tours,
		images: images,
	}
	h.BeforeCreate = func(_ echo.Context, tour *domain.Tour) error {
		now := time.Now().UTC()
		tour.Slug = Slugify(tour.Name)
		tour.CreatedAt = now
		tour.UpdatedAt = now
		if tour.RatingsAverage == 0 {
			tour.RatingsAverage = 4.5
		}
		return nil
	}
	return h
}

// TopTours is the /top-5-cheap alias: best-rated, cheapest first.
func (h *TourHandler) TopTours(c echo.Context) error {
	q := ports.ListQuery{
		Limit:  5,
		Sort:   []string{"-ratingsAverage", "price"},
		Fields: []string{"name", "price", "ratingsAverage", "summary", "difficulty"},
	}

	tours, err := h.tours.Find(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(tours),
		"data":    map[string]any{"tours": tours},
	})
}

// Stats returns rating/price aggregates per difficulty tier.
func (h *TourHandler) Stats(c echo.Context) error {
	stats, err := h.tours.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, "stats", stats)
}

// MonthlyPlan counts tour starts per month of a year.
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return domain.BadRequest("Invalid year: %s.", c.Param("year"))
	}

	plan, err := h.tours.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, "plan", plan)
}

// ToursWithin handles /tour-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) ToursWithin(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return domain.BadRequest("Invalid distance: %s.", c.Param("distance"))
	}
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	radius := distance / earthRadiusKm
	if c.Param("unit") == "mi" {
		radius = distance / earthRadiusMi
	}

	tours, err := h.tours.Within(c.Request().Context(), lng, lat, radius)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(tours),
		"data":    map[string]any{"tours": tours},
	})
}

// Distances handles /distances/:latlng/unit/:unit.
func (h *TourHandler) Distances(c echo.Context) error {
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	multiplier := metersToKm
	if c.Param("unit") == "mi" {
		multiplier = metersToMiles
	}

	distances, err := h.tours.Distances(c.Request().Context(), lng, lat, multiplier)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, "distances", distances)
}

// UpdateTour extends the generic update with image upload: a multipart body
// may carry one imageCover and up to three images, resized before persisting.
func (h *TourHandler) UpdateTour(c echo.Context) error {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return h.UpdateOne(c)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return err
	}

	updates := map[string]any{}
	for key, vals := range form.Value {
		if len(vals) == 0 {
			continue
		}
		if _, protected := protectedUpdateFields[key]; protected {
			continue
		}
		updates[key] = vals[0]
	}

	id := c.Param("id")
	if files := form.File["imageCover"]; len(files) > 0 {
		filename, err := h.saveTourImage(files[0], fmt.Sprintf("tour-%s-%d-cover.jpeg", id, time.Now().UnixMilli()))
		if err != nil {
			return err
		}
		updates["imageCover"] = filename
	}
	if files := form.File["images"]; len(files) > 0 {
		names := make([]string, 0, len(files))
		for i, fh := range files {
			filename, err := h.saveTourImage(fh, fmt.Sprintf("tour-%s-%d-%d.jpeg", id, time.Now().UnixMilli(), i+1))
			if err != nil {
				return err
			}
			names = append(names, filename)
		}
		updates["images"] = names
	}

	tour, err := h.tours.UpdateByID(c.Request().Context(), id, updates)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, "tour", tour)
}

func (h *TourHandler) saveTourImage(fh *multipart.FileHeader, filename string) (string, error) {
	if !strings.HasPrefix(fh.Header.Get(echo.HeaderContentType), "image") {
		return "", domain.BadRequest("Not an image! Please upload only images")
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return h.images.TourImage(data, filename)
}

func parseLatLng(latlng string) (lat, lng float64, err error) {
	parts := strings.SplitN(latlng, ",", 2)
	if len(parts) != 2 {
		return 0, 0, domain.BadRequest("Please provide latitude and longitude in the format lat,lng.")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, domain.BadRequest("Please provide latitude and longitude in the format lat,lng.")
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, domain.BadRequest("Please provide latitude and longitude in the format lat,lng.")
	}
	return lat, lng, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a tour name to its URL slug.
func Slugify(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
