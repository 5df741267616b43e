package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tour difficulty tiers.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// GeoPoint is a GeoJSON point. Coordinates are [lng, lat] as required by the
// 2dsphere index.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is the core catalogue aggregate.
type Tour struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Slug            string               `json:"slug" bson:"slug"`
	Duration        int                  `json:"duration" bson:"duration"`
	MaxGroupSize    int                  `json:"maxGroupSize" bson:"maxGroupSize"`
	Difficulty      string               `json:"difficulty" bson:"difficulty"`
	RatingsAverage  float64              `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                  `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64              `json:"price" bson:"price"`
	PriceDiscount   float64              `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	Summary         string               `json:"summary" bson:"summary"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string               `json:"imageCover" bson:"imageCover"`
	Images          []string             `json:"images,omitempty" bson:"images,omitempty"`
	StartDates      []time.Time          `json:"startDates,omitempty" bson:"startDates,omitempty"`
	StartLocation   GeoPoint             `json:"startLocation" bson:"startLocation"`
	Locations       []GeoPoint           `json:"locations,omitempty" bson:"locations,omitempty"`
	Guides          []primitive.ObjectID `json:"guides,omitempty" bson:"guides,omitempty"`
	SecretTour      bool                 `json:"-" bson:"secretTour"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// TourStats is the per-difficulty aggregation result.
type TourStats struct {
	Difficulty string  `json:"difficulty" bson:"_id"`
	NumTours   int     `json:"numTours" bson:"numTours"`
	NumRatings int     `json:"numRatings" bson:"numRatings"`
	AvgRating  float64 `json:"avgRating" bson:"avgRating"`
	AvgPrice   float64 `json:"avgPrice" bson:"avgPrice"`
	MinPrice   float64 `json:"minPrice" bson:"minPrice"`
	MaxPrice   float64 `json:"maxPrice" bson:"maxPrice"`
}

// MonthlyPlanEntry counts tour starts for one month of a year.
type MonthlyPlanEntry struct {
	Month    int      `json:"month" bson:"month"`
	NumTours int      `json:"numTourStarts" bson:"numTourStarts"`
	Tours    []string `json:"tours" bson:"tours"`
}

// TourDistance is one row of the distances-from-point query.
type TourDistance struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Distance float64            `json:"distance" bson:"distance"`
}
