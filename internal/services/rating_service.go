package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"movie-ratings/internal/models"
	"movie-ratings/internal/repository"
	"movie-ratings/internal/validation"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingService interface {
	ListRatingsForMovie(ctx context.Context, movieID primitive.ObjectID) ([]models.Rating, error)
	// ListAllRatings returns every rating, newest first, with a movie id (hex)
	// to title map for display.
	ListAllRatings(ctx context.Context) ([]models.Rating, map[string]string, error)
	GetRating(ctx context.Context, id primitive.ObjectID) (*models.Rating, error)
	CreateRating(ctx context.Context, input RatingInput) (*models.Rating, error)
	UpdateRating(ctx context.Context, id primitive.ObjectID, input RatingInput) (*models.Rating, error)
	DeleteRating(ctx context.Context, id primitive.ObjectID) error

	// AggregateRatings returns mean and count per movie, highest mean first.
	AggregateRatings(ctx context.Context) ([]models.RatingSummary, error)
}

// RatingInput holds a submitted rating. MovieID is the hex form of the movie
// id; a zero Timestamp means now.
type RatingInput struct {
	UserID    string   `validate:"required" label:"User ID"`
	MovieID   string   `label:"Movie"`
	Value     *float64 `validate:"required,gte=0,lte=10" label:"Rating"`
	Timestamp time.Time
}

type ratingService struct {
	repo      repository.RatingRepository
	movieRepo repository.MovieRepository
	logger    *logrus.Logger
	now       func() time.Time
}

func NewRatingService(repo repository.RatingRepository, movieRepo repository.MovieRepository, logger *logrus.Logger) RatingService {
	return &ratingService{
		repo:      repo,
		movieRepo: movieRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ratingService) ListRatingsForMovie(ctx context.Context, movieID primitive.ObjectID) ([]models.Rating, error) {
	ratings, err := s.repo.FindByMovie(ctx, movieID)
	if err != nil {
		return nil, storeError("loading ratings", err)
	}
	return ratings, nil
}

func (s *ratingService) ListAllRatings(ctx context.Context) ([]models.Rating, map[string]string, error) {
	ratings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, nil, storeError("loading ratings", err)
	}

	titles, err := s.movieRepo.Titles(ctx)
	if err != nil {
		return nil, nil, storeError("loading movies", err)
	}
	byID := make(map[string]string, len(titles))
	for _, t := range titles {
		byID[t.ID.Hex()] = t.Title
	}
	return ratings, byID, nil
}

func (s *ratingService) GetRating(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	rating, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Rating not found.")
		}
		return nil, storeError("loading rating", err)
	}
	return rating, nil
}

func (s *ratingService) CreateRating(ctx context.Context, input RatingInput) (*models.Rating, error) {
	rating, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rating); err != nil {
		return nil, ratingWriteError("creating rating", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":       rating.ID.Hex(),
		"movie_id": rating.MovieID.Hex(),
		"user_id":  rating.UserID,
	}).Info("Rating created")
	return rating, nil
}

func (s *ratingService) UpdateRating(ctx context.Context, id primitive.ObjectID, input RatingInput) (*models.Rating, error) {
	if _, err := s.GetRating(ctx, id); err != nil {
		return nil, err
	}

	rating, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, rating); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Rating not found.")
		}
		return nil, ratingWriteError("updating rating", err)
	}

	s.logger.WithFields(logrus.Fields{"id": id.Hex(), "movie_id": rating.MovieID.Hex()}).Info("Rating updated")
	return rating, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError("deleting rating", err)
	}
	if n == 0 {
		return notFoundError("Rating not found.")
	}

	s.logger.WithField("id", id.Hex()).Info("Rating deleted")
	return nil
}

func (s *ratingService) AggregateRatings(ctx context.Context) ([]models.RatingSummary, error) {
	groups, err := s.repo.AggregateByMovie(ctx)
	if err != nil {
		return nil, storeError("aggregating ratings", err)
	}

	ids := make([]primitive.ObjectID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.MovieID)
	}
	titles, err := s.movieRepo.TitlesByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("loading movies", err)
	}

	summaries := make([]models.RatingSummary, 0, len(groups))
	for _, g := range groups {
		title, ok := titles[g.MovieID]
		if !ok {
			// Ratings left behind by an interrupted cascade.
			s.logger.WithField("movie_id", g.MovieID.Hex()).Debug("Skipping ratings for missing movie")
			continue
		}
		summaries = append(summaries, models.RatingSummary{
			MovieID:       g.MovieID,
			Title:         title,
			AverageRating: g.AvgRating,
			Count:         g.Count,
		})
	}
	return summaries, nil
}

// prepare validates input and resolves the referenced movie. Problems are
// reported in form order: user, then movie, then rating.
func (s *ratingService) prepare(ctx context.Context, input RatingInput) (*models.Rating, error) {
	input.UserID = strings.TrimSpace(input.UserID)

	var verrs validation.Errors
	if err := validation.ValidateStruct(input); err != nil && !errors.As(err, &verrs) {
		return nil, newError(ErrValidation, err, "%v", err)
	}
	if fe, ok := verrs.Field("UserID"); ok {
		return nil, newError(ErrValidation, verrs, "%s", fe.Message)
	}

	movieID, err := primitive.ObjectIDFromHex(strings.TrimSpace(input.MovieID))
	if err != nil {
		return nil, validationError("Invalid movie selected.")
	}
	exists, err := s.movieRepo.Exists(ctx, movieID)
	if err != nil {
		return nil, storeError("loading movie", err)
	}
	if !exists {
		return nil, validationError("Selected movie does not exist.")
	}

	if len(verrs) > 0 {
		return nil, newError(ErrValidation, verrs, "Rating must be a number between 0 and 10.")
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	return &models.Rating{
		UserID:    input.UserID,
		MovieID:   movieID,
		Value:     *input.Value,
		Timestamp: ts.UTC().Truncate(time.Millisecond),
	}, nil
}

func ratingWriteError(action string, err error) *Error {
	if errors.Is(err, repository.ErrSchemaViolation) {
		return newError(ErrValidation, err, "Rating failed schema validation: %v", err)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return newError(ErrConflict, err, "Rating conflicts with an existing one: %v", err)
	}
	return storeError(action, err)
}
