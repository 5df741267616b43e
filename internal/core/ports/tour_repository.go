package ports

import (
	"context"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// TourRepository extends the generic capability with the aggregation and
// geospatial queries tours need.
type TourRepository interface {
	Repository[domain.Tour]

	FindBySlug(ctx context.Context, slug string) (*domain.Tour, error)

	// Stats aggregates rating/price statistics per difficulty tier for tours
	// with ratingsAverage >= 4.5.
	Stats(ctx context.Context) ([]domain.TourStats, error)

	// MonthlyPlan counts tour starts per month of the given year.
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error)

	// Within returns tours whose start location lies inside the sphere cap of
	// the given radius (in radians) around [lng, lat].
	Within(ctx context.Context, lng, lat, radiusRadians float64) ([]domain.Tour, error)

	// Distances returns every tour's distance from [lng, lat], scaled by
	// multiplier (0.001 for km, 0.000621371 for miles).
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]domain.TourDistance, error)
}
