package ports

import (
	"context"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// ReviewRepository persists reviews; the generic capability covers all
// current operations.
type ReviewRepository interface {
	Repository[domain.Review]
}

// BookingRepository extends the generic capability with the per-user lookup
// used by the my-tours page.
type BookingRepository interface {
	Repository[domain.Booking]

	FindByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}
