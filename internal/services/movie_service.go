package services

import (
	"context"
	"errors"
	"strings"

	"movie-ratings/internal/models"
	"movie-ratings/internal/repository"
	"movie-ratings/internal/validation"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MovieService interface {
	// CRUD operations
	ListMovies(ctx context.Context, search string) ([]models.Movie, error)
	GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	CreateMovie(ctx context.Context, input MovieInput) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id primitive.ObjectID, input MovieInput) (*models.Movie, error)
	DeleteMovie(ctx context.Context, id primitive.ObjectID) (int64, error)

	// ListMovieTitles feeds the movie picker on the rating form.
	ListMovieTitles(ctx context.Context) ([]models.MovieTitle, error)
}

// MovieInput holds the editable fields of a movie. Nil means absent.
type MovieInput struct {
	Title       string  `validate:"required" label:"Title"`
	ReleaseYear *int    `validate:"omitempty,gte=1880,lte=2100" label:"Release year"`
	Genre       *string `label:"Genre"`
	Overview    *string `label:"Overview"`
	Runtime     *int    `validate:"omitempty,gte=1,lte=600" label:"Runtime"`
	PosterURL   *string `validate:"omitempty,url" label:"Poster URL"`
}

func (in MovieInput) toModel() *models.Movie {
	return &models.Movie{
		Title:       in.Title,
		ReleaseYear: in.ReleaseYear,
		Genre:       in.Genre,
		Overview:    in.Overview,
		Runtime:     in.Runtime,
		PosterURL:   in.PosterURL,
	}
}

// Transactor runs a unit of work, inside a transaction when the store supports it.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type movieService struct {
	repo       repository.MovieRepository
	ratingRepo repository.RatingRepository
	tx         Transactor
	posters    PosterStorage
	logger     *logrus.Logger
}

// NewMovieService wires the movie operations. posters may be nil when object
// storage is not configured.
func NewMovieService(repo repository.MovieRepository, ratingRepo repository.RatingRepository, tx Transactor, posters PosterStorage, logger *logrus.Logger) MovieService {
	return &movieService{
		repo:       repo,
		ratingRepo: ratingRepo,
		tx:         tx,
		posters:    posters,
		logger:     logger,
	}
}

func (s *movieService) ListMovies(ctx context.Context, search string) ([]models.Movie, error) {
	movies, err := s.repo.FindAll(ctx, search)
	if err != nil {
		return nil, storeError("loading movies", err)
	}
	return movies, nil
}

func (s *movieService) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Movie not found.")
		}
		return nil, storeError("loading movie", err)
	}
	return movie, nil
}

func (s *movieService) CreateMovie(ctx context.Context, input MovieInput) (*models.Movie, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	movie := input.toModel()
	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, movieWriteError("creating movie", movie.Title, err)
	}

	s.logger.WithFields(logrus.Fields{"id": movie.ID.Hex(), "title": movie.Title}).Info("Movie created")
	return movie, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, id primitive.ObjectID, input MovieInput) (*models.Movie, error) {
	existing, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	movie := input.toModel()
	if err := s.repo.Update(ctx, id, movie); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Movie not found.")
		}
		return nil, movieWriteError("updating movie", movie.Title, err)
	}

	if existing.PosterURL != nil && !samePoster(existing.PosterURL, movie.PosterURL) {
		s.removePoster(ctx, *existing.PosterURL)
	}

	s.logger.WithFields(logrus.Fields{"id": id.Hex(), "title": movie.Title}).Info("Movie updated")
	return movie, nil
}

// DeleteMovie removes the movie and every rating that references it. It
// returns the number of ratings removed.
func (s *movieService) DeleteMovie(ctx context.Context, id primitive.ObjectID) (int64, error) {
	existing, err := s.GetMovie(ctx, id)
	if err != nil {
		return 0, err
	}

	var removed int64
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		n, err := s.ratingRepo.DeleteByMovie(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("id", id.Hex()).Error("Movie delete did not complete")
		return 0, storeError("deleting movie", err)
	}

	if existing.PosterURL != nil {
		s.removePoster(ctx, *existing.PosterURL)
	}

	s.logger.WithFields(logrus.Fields{"id": id.Hex(), "ratings_removed": removed}).Info("Movie deleted")
	return removed, nil
}

func (s *movieService) ListMovieTitles(ctx context.Context) ([]models.MovieTitle, error) {
	titles, err := s.repo.Titles(ctx)
	if err != nil {
		return nil, storeError("loading movies", err)
	}
	return titles, nil
}

func (s *movieService) removePoster(ctx context.Context, posterURL string) {
	if s.posters == nil || !s.posters.Owns(posterURL) {
		return
	}
	if err := s.posters.Delete(ctx, posterURL); err != nil {
		s.logger.WithError(err).WithField("poster_url", posterURL).Warn("Failed to delete poster from storage")
	}
}

func samePoster(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func movieWriteError(action, title string, err error) *Error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return newError(ErrConflict, err, "A movie titled %q already exists: %v", title, err)
	case errors.Is(err, repository.ErrSchemaViolation):
		return newError(ErrValidation, err, "Movie failed schema validation: %v", err)
	default:
		return storeError(action, err)
	}
}

func validateInput(input interface{}) error {
	err := validation.ValidateStruct(input)
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return newError(ErrValidation, verrs, "%s", verrs.First())
	}
	return newError(ErrValidation, err, "%v", err)
}
