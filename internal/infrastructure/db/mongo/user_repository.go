package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository persists users. All reads through the generic capability
// exclude soft-deleted accounts via the base filter.
type UserRepository struct {
	*Repository[domain.User]
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection(collectionUsers)
	return &UserRepository{
		Repository: NewRepository[domain.User](col, bson.M{"active": bson.M{"$ne": false}}),
		col:        col,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"email": email, "active": bson.M{"$ne": false}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	}

	var user domain.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID string, hashedToken string, expires time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &domain.CastError{Field: "_id", Value: userID}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var update bson.M
	if hashedToken == "" {
		update = bson.M{"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""}}
	} else {
		update = bson.M{"$set": bson.M{"passwordResetToken": hashedToken, "passwordResetExpires": expires}}
	}

	_, err = r.col.UpdateByID(ctx, oid, update)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, changedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &domain.CastError{Field: "_id", Value: userID}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"password":          passwordHash,
		"passwordChangedAt": changedAt,
		"updated_at":        time.Now().UTC(),
	}}

	_, err = r.col.UpdateByID(ctx, oid, update)
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &domain.CastError{Field: "_id", Value: userID}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"active": false}})
	return err
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: uniqueIndex()},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
