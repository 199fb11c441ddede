package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Bounds shared by the collection validators and the service-level checks.
const (
	MinReleaseYear = 1880
	MaxReleaseYear = 2100
	MinRuntime     = 1
	MaxRuntime     = 600
	MinRating      = 0
	MaxRating      = 10
)

func movieSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title"},
			"properties": bson.M{
				"title": bson.M{
					"bsonType":    "string",
					"minLength":   1,
					"description": "Movie title must be a non-empty string and is required.",
				},
				"release_year": bson.M{
					"bsonType":    bson.A{"int", "long", "null"},
					"minimum":     MinReleaseYear,
					"maximum":     MaxReleaseYear,
					"description": "Release year must be an integer between 1880 and 2100.",
				},
				"genre": bson.M{
					"bsonType":    bson.A{"string", "null"},
					"description": "Genre must be a string or null.",
				},
				"runtime": bson.M{
					"bsonType":    bson.A{"int", "long", "null"},
					"minimum":     MinRuntime,
					"maximum":     MaxRuntime,
					"description": "Runtime must be an integer (1-600 minutes).",
				},
				"overview": bson.M{
					"bsonType":    bson.A{"string", "null"},
					"description": "Overview must be a string or null.",
				},
				"poster_url": bson.M{
					"bsonType":    bson.A{"string", "null"},
					"description": "Poster URL must be a string or null.",
				},
			},
		},
	}
}

func ratingSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"userId", "movieId", "rating"},
			"properties": bson.M{
				"userId": bson.M{
					"bsonType":    "string",
					"description": "User ID must be a string.",
				},
				"movieId": bson.M{
					"bsonType":    "objectId",
					"description": "movieId must reference a valid ObjectId from movies.",
				},
				"rating": bson.M{
					"bsonType":    bson.A{"double", "int", "long"},
					"minimum":     MinRating,
					"maximum":     MaxRating,
					"description": "Rating must be between 0 and 10.",
				},
				"timestamp": bson.M{
					"bsonType":    bson.A{"date", "null"},
					"description": "Timestamp must be a valid date or null.",
				},
			},
		},
	}
}

// ProvisionOptions controls Provision.
type ProvisionOptions struct {
	// Drop removes both collections, and every document in them, first.
	Drop bool
}

// Provision creates the movies and ratings collections with strict schema
// validation and their indexes. Existing collections get their validator
// replaced through collMod.
func Provision(ctx context.Context, d *Database, opts ProvisionOptions, log *logrus.Logger) error {
	collections := []struct {
		name      string
		validator bson.M
		indexes   []mongo.IndexModel
	}{
		{
			name:      d.Movies().Name(),
			validator: movieSchema(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			name:      d.Ratings().Name(),
			validator: ratingSchema(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "movieId", Value: 1}}},
				{Keys: bson.D{{Key: "userId", Value: 1}}},
				{Keys: bson.D{{Key: "timestamp", Value: 1}}},
			},
		},
	}

	if opts.Drop {
		for _, c := range collections {
			log.WithField("collection", c.name).Info("Dropping collection")
			if err := d.DB().Collection(c.name).Drop(ctx); err != nil {
				return fmt.Errorf("drop %s: %w", c.name, err)
			}
		}
	}

	existing, err := d.DB().ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for _, c := range collections {
		if present[c.name] {
			log.WithField("collection", c.name).Info("Updating schema validation")
			cmd := bson.D{
				{Key: "collMod", Value: c.name},
				{Key: "validator", Value: c.validator},
				{Key: "validationLevel", Value: "strict"},
			}
			if err := d.DB().RunCommand(ctx, cmd).Err(); err != nil {
				return fmt.Errorf("update validator on %s: %w", c.name, err)
			}
		} else {
			log.WithField("collection", c.name).Info("Creating collection with schema validation")
			createOpts := options.CreateCollection().
				SetValidator(c.validator).
				SetValidationLevel("strict")
			if err := d.DB().CreateCollection(ctx, c.name, createOpts); err != nil {
				return fmt.Errorf("create %s: %w", c.name, err)
			}
		}

		if _, err := d.DB().Collection(c.name).Indexes().CreateMany(ctx, c.indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", c.name, err)
		}
	}

	log.Info("Schema provisioning completed")
	return nil
}
