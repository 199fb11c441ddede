package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"movie-ratings/internal/database"
	"movie-ratings/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MovieRepository interface {
	// CRUD operations
	Create(ctx context.Context, movie *models.Movie) error
	Update(ctx context.Context, id primitive.ObjectID, movie *models.Movie) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	FindAll(ctx context.Context, search string) ([]models.Movie, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)

	// Title lookups for joins
	Titles(ctx context.Context) ([]models.MovieTitle, error)
	TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type movieRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{
		coll:    db.Movies(),
		timeout: db.GetQueryTimeout(),
	}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *movieRepository) Create(ctx context.Context, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if movie.ID.IsZero() {
		movie.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, movie)
	return mapWriteError(err)
}

func (r *movieRepository) Update(ctx context.Context, id primitive.ObjectID, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":        movie.Title,
		"release_year": movie.ReleaseYear,
		"genre":        movie.Genre,
		"overview":     movie.Overview,
		"runtime":      movie.Runtime,
		"poster_url":   movie.PosterURL,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	movie.ID = id
	return nil
}

func (r *movieRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *movieRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&movie)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) FindAll(ctx context.Context, search string) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0)
	if err := cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *movieRepository) Titles(ctx context.Context) ([]models.MovieTitle, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"title": 1}).
		SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	titles := make([]models.MovieTitle, 0)
	if err := cursor.All(ctx, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *movieRepository) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}

	var titles []models.MovieTitle
	if err := cursor.All(ctx, &titles); err != nil {
		return nil, err
	}
	for _, t := range titles {
		out[t.ID] = t.Title
	}
	return out, nil
}
