package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a single user's score for a movie, stored in the ratings collection.
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"user_id" example:"alice"`
	MovieID   primitive.ObjectID `bson:"movieId" json:"movie_id"`
	Value     float64            `bson:"rating" json:"rating" example:"9.5"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

func (Rating) CollectionName() string {
	return "ratings"
}

// RatingGroup is one row of the group-by-movie aggregation.
type RatingGroup struct {
	MovieID   primitive.ObjectID `bson:"_id"`
	AvgRating float64            `bson:"avgRating"`
	Count     int64              `bson:"count"`
}

// RatingSummary is a RatingGroup whose movie still exists.
type RatingSummary struct {
	MovieID       primitive.ObjectID `json:"movie_id"`
	Title         string             `json:"title"`
	AverageRating float64            `json:"average_rating"`
	Count         int64              `json:"count"`
}

// RoundedAverage is the display value, two decimal places.
func (s RatingSummary) RoundedAverage() float64 {
	return math.Round(s.AverageRating*100) / 100
}

// ChartData mirrors the series the analytics page charts.
type ChartData struct {
	Labels        []string  `json:"labels"`
	AverageValues []float64 `json:"avg_values"`
	CountValues   []int64   `json:"count_values"`
}

// NewChartData flattens summaries into parallel series.
func NewChartData(summaries []RatingSummary) ChartData {
	data := ChartData{
		Labels:        make([]string, 0, len(summaries)),
		AverageValues: make([]float64, 0, len(summaries)),
		CountValues:   make([]int64, 0, len(summaries)),
	}
	for _, s := range summaries {
		data.Labels = append(data.Labels, s.Title)
		data.AverageValues = append(data.AverageValues, s.RoundedAverage())
		data.CountValues = append(data.CountValues, s.Count)
	}
	return data
}
