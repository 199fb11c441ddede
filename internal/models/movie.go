package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie is a document in the movies collection. Optional fields are stored
// as null when absent.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" example:"Inception"`
	ReleaseYear *int               `bson:"release_year" json:"release_year,omitempty" example:"2010"`
	Genre       *string            `bson:"genre" json:"genre,omitempty" example:"Sci-Fi"`
	Overview    *string            `bson:"overview" json:"overview,omitempty"`
	Runtime     *int               `bson:"runtime" json:"runtime,omitempty" example:"148"`
	PosterURL   *string            `bson:"poster_url" json:"poster_url,omitempty"`
}

// MovieTitle is the projection used for pickers and display joins.
type MovieTitle struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
}

func (Movie) CollectionName() string {
	return "movies"
}
