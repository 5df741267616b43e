package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/core/domain"
)

const collectionReviews = "reviews"

// ReviewRepository persists reviews.
type ReviewRepository struct {
	*Repository[domain.Review]
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection(collectionReviews)
	return &ReviewRepository{
		Repository: NewRepository[domain.Review](col, nil),
		col:        col,
	}
}

// EnsureIndexes creates the unique (tour, user) index: one review per user
// per tour.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}}, Options: uniqueIndex()},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
