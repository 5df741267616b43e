package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yash-miyani/natours/internal/core/domain"
)

const collectionTours = "tours"

// TourRepository persists tours. Secret tours are hidden from all generic
// reads via the base filter.
type TourRepository struct {
	*Repository[domain.Tour]
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	col := db.Collection(collectionTours)
	return &TourRepository{
		Repository: NewRepository[domain.Tour](col, bson.M{"secretTour": bson.M{"$ne": true}}),
		col:        col,
	}
}

func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tour domain.Tour
	err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tour, nil
}

// Stats aggregates rating and price statistics per difficulty tier for
// tours rated at least 4.5.
func (r *TourRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toLower": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	stats := []domain.TourStats{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthlyPlan counts tour starts per month of the given year.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"numTourStarts": -1}}},
		{{Key: "$limit", Value: 12}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	plan := []domain.MonthlyPlanEntry{}
	if err := cur.All(ctx, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Within returns tours whose start location lies inside the sphere cap of
// the given radius (radians) around the point.
func (r *TourRepository) Within(ctx context.Context, lng, lat, radiusRadians float64) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"startLocation": bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, radiusRadians},
		},
	}}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tours := []domain.Tour{}
	if err := cur.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// Distances returns every tour's distance from the point, scaled by
// multiplier. $geoNear must be the first pipeline stage.
func (r *TourRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]domain.TourDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	distances := []domain.TourDistance{}
	if err := cur.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}

// EnsureIndexes creates the slug, compound price/rating, and 2dsphere indexes.
func (r *TourRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func uniqueIndex() *options.IndexOptions {
	return options.Index().SetUnique(true)
}
