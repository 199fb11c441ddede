// Package testinfra provides stand-ins for the Mongo-backed repositories and
// a disposable MongoDB container for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"movie-ratings/internal/models"
	"movie-ratings/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds movies and ratings in memory. Setting Err makes every call fail
// with it.
type Store struct {
	mu      sync.Mutex
	movies  map[primitive.ObjectID]models.Movie
	ratings map[primitive.ObjectID]models.Rating

	Err error
}

func NewStore() *Store {
	return &Store{
		movies:  make(map[primitive.ObjectID]models.Movie),
		ratings: make(map[primitive.ObjectID]models.Rating),
	}
}

// Movies returns the store as a MovieRepository.
func (s *Store) Movies() repository.MovieRepository { return movieRepo{s} }

// Ratings returns the store as a RatingRepository.
func (s *Store) Ratings() repository.RatingRepository { return ratingRepo{s} }

// RunInTransaction runs fn directly.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RatingCount is the number of stored ratings, orphans included.
func (s *Store) RatingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

// PutRating stores r as-is, bypassing every check. Used to plant orphans.
func (s *Store) PutRating(r models.Rating) models.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.ratings[r.ID] = r
	return r
}

type movieRepo struct{ s *Store }

func (r movieRepo) titleTaken(title string, except primitive.ObjectID) bool {
	for id, m := range r.s.movies {
		if id != except && m.Title == title {
			return true
		}
	}
	return false
}

func (r movieRepo) Create(_ context.Context, movie *models.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.titleTaken(movie.Title, primitive.NilObjectID) {
		return fmt.Errorf("%w: E11000 duplicate key error collection: movies index: title_1 dup key: { title: %q }", repository.ErrDuplicate, movie.Title)
	}
	if movie.ID.IsZero() {
		movie.ID = primitive.NewObjectID()
	}
	r.s.movies[movie.ID] = *movie
	return nil
}

func (r movieRepo) Update(_ context.Context, id primitive.ObjectID, movie *models.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.movies[id]; !ok {
		return repository.ErrNotFound
	}
	if r.titleTaken(movie.Title, id) {
		return fmt.Errorf("%w: E11000 duplicate key error collection: movies index: title_1 dup key: { title: %q }", repository.ErrDuplicate, movie.Title)
	}
	movie.ID = id
	r.s.movies[id] = *movie
	return nil
}

func (r movieRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	if _, ok := r.s.movies[id]; !ok {
		return 0, nil
	}
	delete(r.s.movies, id)
	return 1, nil
}

func (r movieRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	m, ok := r.s.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r movieRepo) FindAll(_ context.Context, search string) ([]models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	needle := strings.ToLower(search)
	out := make([]models.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		if needle == "" || strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r movieRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	_, ok := r.s.movies[id]
	return ok, nil
}

func (r movieRepo) Titles(ctx context.Context) ([]models.MovieTitle, error) {
	movies, err := r.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]models.MovieTitle, 0, len(movies))
	for _, m := range movies {
		out = append(out, models.MovieTitle{ID: m.ID, Title: m.Title})
	}
	return out, nil
}

func (r movieRepo) TitlesByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if m, ok := r.s.movies[id]; ok {
			out[id] = m.Title
		}
	}
	return out, nil
}

type ratingRepo struct{ s *Store }

func (r ratingRepo) Create(_ context.Context, rating *models.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	r.s.ratings[rating.ID] = *rating
	return nil
}

func (r ratingRepo) Update(_ context.Context, id primitive.ObjectID, rating *models.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.ratings[id]; !ok {
		return repository.ErrNotFound
	}
	rating.ID = id
	r.s.ratings[id] = *rating
	return nil
}

func (r ratingRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	if _, ok := r.s.ratings[id]; !ok {
		return 0, nil
	}
	delete(r.s.ratings, id)
	return 1, nil
}

func (r ratingRepo) DeleteByMovie(_ context.Context, movieID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for id, rt := range r.s.ratings {
		if rt.MovieID == movieID {
			delete(r.s.ratings, id)
			n++
		}
	}
	return n, nil
}

func (r ratingRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rt, ok := r.s.ratings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}

func (r ratingRepo) FindByMovie(_ context.Context, movieID primitive.ObjectID) ([]models.Rating, error) {
	return r.find(func(rt models.Rating) bool { return rt.MovieID == movieID })
}

func (r ratingRepo) FindAll(_ context.Context) ([]models.Rating, error) {
	return r.find(func(models.Rating) bool { return true })
}

func (r ratingRepo) find(match func(models.Rating) bool) ([]models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]models.Rating, 0)
	for _, rt := range r.s.ratings {
		if match(rt) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r ratingRepo) AggregateByMovie(_ context.Context) ([]models.RatingGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	sums := make(map[primitive.ObjectID]float64)
	counts := make(map[primitive.ObjectID]int64)
	for _, rt := range r.s.ratings {
		sums[rt.MovieID] += rt.Value
		counts[rt.MovieID]++
	}
	out := make([]models.RatingGroup, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.RatingGroup{MovieID: id, AvgRating: sums[id] / float64(n), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].MovieID.Hex() < out[j].MovieID.Hex()
	})
	return out, nil
}
