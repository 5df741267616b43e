package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/core/domain"
)

const collectionBookings = "bookings"

// BookingRepository persists bookings.
type BookingRepository struct {
	*Repository[domain.Booking]
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection(collectionBookings)
	return &BookingRepository{
		Repository: NewRepository[domain.Booking](col, nil),
		col:        col,
	}
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &domain.CastError{Field: "user", Value: userID}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user": oid})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookings := []domain.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// EnsureIndexes creates the tour and user lookup indexes.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tour", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
