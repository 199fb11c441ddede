package repository

import (
	"context"
	"errors"
	"time"

	"movie-ratings/internal/database"
	"movie-ratings/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	Update(ctx context.Context, id primitive.ObjectID, rating *models.Rating) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error)
	FindByMovie(ctx context.Context, movieID primitive.ObjectID) ([]models.Rating, error)
	FindAll(ctx context.Context) ([]models.Rating, error)

	// AggregateByMovie groups every rating by movie, highest average first.
	AggregateByMovie(ctx context.Context) ([]models.RatingGroup, error)
}

type ratingRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewRatingRepository(db *database.Database) RatingRepository {
	return &ratingRepository{
		coll:    db.Ratings(),
		timeout: db.GetQueryTimeout(),
	}
}

func (r *ratingRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, rating)
	return mapWriteError(err)
}

func (r *ratingRepository) Update(ctx context.Context, id primitive.ObjectID, rating *models.Rating) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"userId":    rating.UserID,
		"movieId":   rating.MovieID,
		"rating":    rating.Value,
		"timestamp": rating.Timestamp,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	rating.ID = id
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ratingRepository) DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"movieId": movieID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ratingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rating models.Rating
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByMovie(ctx context.Context, movieID primitive.ObjectID) ([]models.Rating, error) {
	return r.find(ctx, bson.M{"movieId": movieID})
}

func (r *ratingRepository) FindAll(ctx context.Context) ([]models.Rating, error) {
	return r.find(ctx, bson.M{})
}

func (r *ratingRepository) find(ctx context.Context, filter bson.M) ([]models.Rating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}

	ratings := make([]models.Rating, 0)
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) AggregateByMovie(ctx context.Context) ([]models.RatingGroup, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$movieId"},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgRating", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	groups := make([]models.RatingGroup, 0)
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
