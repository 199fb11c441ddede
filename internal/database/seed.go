package database

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"movie-ratings/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

//go:embed seed/sample.yaml
var sampleSeed []byte

// SeedData is the YAML layout of a seed file. Ratings point at movies by title.
type SeedData struct {
	Movies []struct {
		Title       string  `yaml:"title"`
		ReleaseYear *int    `yaml:"release_year"`
		Genre       *string `yaml:"genre"`
		Overview    *string `yaml:"overview"`
		Runtime     *int    `yaml:"runtime"`
	} `yaml:"movies"`
	Ratings []struct {
		UserID string  `yaml:"user_id"`
		Movie  string  `yaml:"movie"`
		Rating float64 `yaml:"rating"`
	} `yaml:"ratings"`
}

// LoadSeedData parses the seed file at path, or the bundled sample set when
// path is empty.
func LoadSeedData(path string) (*SeedData, error) {
	raw := sampleSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}

	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &data, nil
}

// Seed inserts the seed movies and ratings unless movies already exist.
// It returns how many of each were inserted.
func Seed(ctx context.Context, d *Database, data *SeedData, log *logrus.Logger) (int, int, error) {
	count, err := d.Movies().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("count movies: %w", err)
	}
	if count > 0 {
		log.WithField("movies", count).Info("Movies already present, skipping seed")
		return 0, 0, nil
	}

	ids := make(map[string]primitive.ObjectID, len(data.Movies))
	movieDocs := make([]interface{}, 0, len(data.Movies))
	for _, m := range data.Movies {
		movie := models.Movie{
			ID:          primitive.NewObjectID(),
			Title:       m.Title,
			ReleaseYear: m.ReleaseYear,
			Genre:       m.Genre,
			Overview:    m.Overview,
			Runtime:     m.Runtime,
		}
		ids[m.Title] = movie.ID
		movieDocs = append(movieDocs, movie)
	}
	if len(movieDocs) > 0 {
		if _, err := d.Movies().InsertMany(ctx, movieDocs); err != nil {
			return 0, 0, fmt.Errorf("insert sample movies: %w", err)
		}
	}

	now := time.Now().UTC()
	ratingDocs := make([]interface{}, 0, len(data.Ratings))
	for _, r := range data.Ratings {
		movieID, ok := ids[r.Movie]
		if !ok {
			return len(movieDocs), 0, fmt.Errorf("seed rating for %q references unknown movie", r.Movie)
		}
		ratingDocs = append(ratingDocs, models.Rating{
			UserID:    r.UserID,
			MovieID:   movieID,
			Value:     r.Rating,
			Timestamp: now,
		})
	}
	if len(ratingDocs) > 0 {
		if _, err := d.Ratings().InsertMany(ctx, ratingDocs); err != nil {
			return len(movieDocs), 0, fmt.Errorf("insert sample ratings: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"movies":  len(movieDocs),
		"ratings": len(ratingDocs),
	}).Info("Sample data inserted")
	return len(movieDocs), len(ratingDocs), nil
}
