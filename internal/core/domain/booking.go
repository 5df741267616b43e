package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking records a paid (or manually created) reservation of a tour.
type Booking struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Price     float64            `json:"price" bson:"price"`
	Paid      bool               `json:"paid" bson:"paid"`
	SessionID string             `json:"-" bson:"session_id,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CheckoutSession is the hosted-checkout handoff returned to the client. The
// client is redirected to URL; the provider redirects back to SuccessURL on
// completion.
type CheckoutSession struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	SuccessURL string  `json:"-"`
	TourID     string  `json:"-"`
	UserID     string  `json:"-"`
	Amount     float64 `json:"-"`
}
