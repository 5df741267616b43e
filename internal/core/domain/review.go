package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's rating of a tour. One review per (tour, user) pair,
// enforced by a unique compound index.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Review    string             `json:"review" bson:"review"`
	Rating    float64            `json:"rating" bson:"rating"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
