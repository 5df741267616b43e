package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 100
)

// Repository is the generic document repository backing the CRUD factory.
// A base filter (e.g. {active: {$ne: false}}) is merged into every read.
type Repository[T any] struct {
	col        *mongo.Collection
	baseFilter bson.M
}

// NewRepository creates a generic repository over the given collection.
func NewRepository[T any](col *mongo.Collection, baseFilter bson.M) *Repository[T] {
	return &Repository[T]{col: col, baseFilter: baseFilter}
}

func (r *Repository[T]) Create(ctx context.Context, doc *T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return r.findByObjectID(ctx, oid)
	}
	return doc, nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.CastError{Field: "_id", Value: id}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findByObjectID(ctx, oid)
}

func (r *Repository[T]) findByObjectID(ctx context.Context, oid primitive.ObjectID) (*T, error) {
	var doc T
	err := r.col.FindOne(ctx, r.merge(bson.M{"_id": oid})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *Repository[T]) Find(ctx context.Context, q ports.ListQuery) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find()

	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, field := range q.Sort {
			order := 1
			if len(field) > 0 && field[0] == '-' {
				order = -1
				field = field[1:]
			}
			sort = append(sort, bson.E{Key: field, Value: order})
		}
		opts.SetSort(sort)
	} else {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	if len(q.Fields) > 0 {
		projection := bson.M{}
		for _, field := range q.Fields {
			projection[field] = 1
		}
		opts.SetProjection(projection)
	}

	page := q.Page
	if page < 1 {
		page = defaultPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	opts.SetSkip((page - 1) * limit)
	opts.SetLimit(limit)

	cur, err := r.col.Find(ctx, r.merge(toBSONFilter(q.Filter)), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repository[T]) UpdateByID(ctx context.Context, id string, updates map[string]any) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.CastError{Field: "_id", Value: id}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err = r.col.FindOneAndUpdate(ctx, r.merge(bson.M{"_id": oid}), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.CastError{Field: "_id", Value: id}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, r.merge(toBSONFilter(filter)))
}

// merge combines the base filter with a query filter. The query filter wins
// on key collisions.
func (r *Repository[T]) merge(filter bson.M) bson.M {
	if len(r.baseFilter) == 0 {
		return filter
	}
	merged := bson.M{}
	for k, v := range r.baseFilter {
		merged[k] = v
	}
	for k, v := range filter {
		merged[k] = v
	}
	return merged
}

// toBSONFilter converts a ports filter to bson, translating operator maps
// ({"gte": v}) to their Mongo forms ({"$gte": v}).
func toBSONFilter(filter map[string]any) bson.M {
	out := bson.M{}
	for field, v := range filter {
		if ops, ok := v.(map[string]any); ok {
			expr := bson.M{}
			for op, val := range ops {
				expr["$"+op] = val
			}
			out[field] = expr
			continue
		}
		out[field] = v
	}
	return out
}
