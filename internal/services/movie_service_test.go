package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"movie-ratings/internal/models"
	"movie-ratings/internal/testinfra"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakePosters struct {
	deleted []string
}

func (f *fakePosters) PresignUpload(_ context.Context, filename, _ string) (string, string, error) {
	return "https://upload.test/" + filename, "https://cdn.test/posters/" + filename, nil
}

func (f *fakePosters) Delete(_ context.Context, publicURL string) error {
	f.deleted = append(f.deleted, publicURL)
	return nil
}

func (f *fakePosters) Owns(publicURL string) bool {
	return strings.HasPrefix(publicURL, "https://cdn.test/posters/")
}

type fixture struct {
	store   *testinfra.Store
	posters *fakePosters
	movies  MovieService
	ratings RatingService
}

func newFixture() *fixture {
	store := testinfra.NewStore()
	posters := &fakePosters{}
	log := quietLogger()
	return &fixture{
		store:   store,
		posters: posters,
		movies:  NewMovieService(store.Movies(), store.Ratings(), store, posters, log),
		ratings: NewRatingService(store.Ratings(), store.Movies(), log),
	}
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func (f *fixture) mustCreateMovie(t *testing.T, title string) *models.Movie {
	t.Helper()
	m, err := f.movies.CreateMovie(context.Background(), MovieInput{Title: title})
	if err != nil {
		t.Fatalf("CreateMovie(%q): %v", title, err)
	}
	return m
}

func (f *fixture) mustRate(t *testing.T, movie *models.Movie, user string, value float64) *models.Rating {
	t.Helper()
	r, err := f.ratings.CreateRating(context.Background(), RatingInput{
		UserID:  user,
		MovieID: movie.ID.Hex(),
		Value:   floatPtr(value),
	})
	if err != nil {
		t.Fatalf("CreateRating(%s, %v): %v", user, value, err)
	}
	return r
}

func TestCreateMovieRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := MovieInput{
		Title:       "Inception",
		ReleaseYear: intPtr(2010),
		Genre:       strPtr("Sci-Fi"),
		Overview:    strPtr("A thief who steals corporate secrets through dream-sharing."),
		Runtime:     intPtr(148),
		PosterURL:   strPtr("https://cdn.test/posters/inception.jpg"),
	}
	created, err := f.movies.CreateMovie(ctx, input)
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected generated id")
	}

	got, err := f.movies.GetMovie(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.Title != input.Title || *got.ReleaseYear != 2010 || *got.Genre != "Sci-Fi" ||
		*got.Overview != *input.Overview || *got.Runtime != 148 || *got.PosterURL != *input.PosterURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateMovieOptionalFieldsAbsent(t *testing.T) {
	f := newFixture()
	m := f.mustCreateMovie(t, "Alien")

	got, err := f.movies.GetMovie(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.ReleaseYear != nil || got.Genre != nil || got.Overview != nil || got.Runtime != nil || got.PosterURL != nil {
		t.Fatalf("expected absent optional fields, got %+v", got)
	}
}

func TestCreateMovieValidation(t *testing.T) {
	tests := []struct {
		name  string
		input MovieInput
		msg   string
	}{
		{"empty title", MovieInput{Title: ""}, "Title is required."},
		{"blank title", MovieInput{Title: "   "}, "Title is required."},
		{"year too early", MovieInput{Title: "A", ReleaseYear: intPtr(1879)}, "Release year must be at least 1880."},
		{"year too late", MovieInput{Title: "A", ReleaseYear: intPtr(2101)}, "Release year must be at most 2100."},
		{"runtime zero", MovieInput{Title: "A", Runtime: intPtr(0)}, "Runtime must be at least 1."},
		{"runtime too long", MovieInput{Title: "A", Runtime: intPtr(601)}, "Runtime must be at most 600."},
		{"bad poster", MovieInput{Title: "A", PosterURL: strPtr("not a url")}, "Poster URL must be a valid URL."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.movies.CreateMovie(context.Background(), tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Fatalf("message = %q, want %q", err.Error(), tt.msg)
			}
			movies, _ := f.movies.ListMovies(context.Background(), "")
			if len(movies) != 0 {
				t.Fatalf("nothing should be persisted, got %d movies", len(movies))
			}
		})
	}
}

func TestCreateMovieBoundsAccepted(t *testing.T) {
	f := newFixture()
	_, err := f.movies.CreateMovie(context.Background(), MovieInput{
		Title:       "Edge",
		ReleaseYear: intPtr(1880),
		Runtime:     intPtr(600),
	})
	if err != nil {
		t.Fatalf("bounds should be inclusive: %v", err)
	}
}

func TestCreateMovieDuplicateTitle(t *testing.T) {
	f := newFixture()
	f.mustCreateMovie(t, "Inception")

	_, err := f.movies.CreateMovie(context.Background(), MovieInput{Title: "Inception"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "E11000") {
		t.Fatalf("conflict message should carry the store message: %q", err.Error())
	}
}

func TestUpdateMovie(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m, err := f.movies.CreateMovie(ctx, MovieInput{Title: "Alien", Genre: strPtr("Horror"), Runtime: intPtr(117)})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	if _, err := f.movies.UpdateMovie(ctx, m.ID, MovieInput{Title: "Aliens", ReleaseYear: intPtr(1986)}); err != nil {
		t.Fatalf("UpdateMovie: %v", err)
	}

	got, _ := f.movies.GetMovie(ctx, m.ID)
	if got.Title != "Aliens" || *got.ReleaseYear != 1986 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Genre != nil || got.Runtime != nil {
		t.Fatalf("editable fields are fully replaced: %+v", got)
	}
}

func TestUpdateMovieErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mustCreateMovie(t, "Inception")
	m := f.mustCreateMovie(t, "Alien")

	if _, err := f.movies.UpdateMovie(ctx, primitive.NewObjectID(), MovieInput{Title: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.movies.UpdateMovie(ctx, m.ID, MovieInput{Title: ""}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.movies.UpdateMovie(ctx, m.ID, MovieInput{Title: "Inception"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, _ := f.movies.GetMovie(ctx, m.ID)
	if got.Title != "Alien" {
		t.Fatalf("failed updates must not change the movie: %+v", got)
	}
}

func TestUpdateMovieReplacesPoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := "https://cdn.test/posters/old.jpg"
	m, _ := f.movies.CreateMovie(ctx, MovieInput{Title: "Alien", PosterURL: strPtr(old)})

	if _, err := f.movies.UpdateMovie(ctx, m.ID, MovieInput{Title: "Alien", PosterURL: strPtr("https://cdn.test/posters/new.jpg")}); err != nil {
		t.Fatalf("UpdateMovie: %v", err)
	}
	if len(f.posters.deleted) != 1 || f.posters.deleted[0] != old {
		t.Fatalf("old poster should be removed, deleted = %v", f.posters.deleted)
	}
}

func TestListMoviesSearch(t *testing.T) {
	f := newFixture()
	f.mustCreateMovie(t, "The Dark Knight")
	f.mustCreateMovie(t, "Inception")

	tests := []struct {
		q    string
		want []string
	}{
		{"dark", []string{"The Dark Knight"}},
		{"DARK", []string{"The Dark Knight"}},
		{"", []string{"Inception", "The Dark Knight"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		movies, err := f.movies.ListMovies(context.Background(), tt.q)
		if err != nil {
			t.Fatalf("ListMovies(%q): %v", tt.q, err)
		}
		if len(movies) != len(tt.want) {
			t.Fatalf("ListMovies(%q) = %d movies, want %d", tt.q, len(movies), len(tt.want))
		}
		for i, m := range movies {
			if m.Title != tt.want[i] {
				t.Fatalf("ListMovies(%q)[%d] = %q, want %q", tt.q, i, m.Title, tt.want[i])
			}
		}
	}
}

func TestGetMovieNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.movies.GetMovie(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMovieCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doomed, _ := f.movies.CreateMovie(ctx, MovieInput{Title: "The Shawshank Redemption", PosterURL: strPtr("https://cdn.test/posters/s.jpg")})
	kept := f.mustCreateMovie(t, "Inception")
	f.mustRate(t, doomed, "alice", 9.5)
	f.mustRate(t, doomed, "bob", 9.0)
	f.mustRate(t, kept, "carol", 8.5)

	removed, err := f.movies.DeleteMovie(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if _, err := f.movies.GetMovie(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("movie should be gone, got %v", err)
	}
	ratings, _, err := f.ratings.ListAllRatings(ctx)
	if err != nil {
		t.Fatalf("ListAllRatings: %v", err)
	}
	for _, r := range ratings {
		if r.MovieID == doomed.ID {
			t.Fatalf("rating %s survived the cascade", r.ID.Hex())
		}
	}
	if len(ratings) != 1 {
		t.Fatalf("ratings = %d, want 1", len(ratings))
	}
	if len(f.posters.deleted) != 1 {
		t.Fatalf("poster should be removed, deleted = %v", f.posters.deleted)
	}
}

func TestDeleteMovieNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.movies.DeleteMovie(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMovieStoreFailure(t *testing.T) {
	f := newFixture()
	f.store.Err = errors.New("server selection timeout")

	_, err := f.movies.ListMovies(context.Background(), "")
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if !strings.Contains(err.Error(), "server selection timeout") {
		t.Fatalf("store error should describe the cause: %q", err.Error())
	}
}

func TestListMovieTitles(t *testing.T) {
	f := newFixture()
	f.mustCreateMovie(t, "Inception")
	f.mustCreateMovie(t, "Alien")

	titles, err := f.movies.ListMovieTitles(context.Background())
	if err != nil {
		t.Fatalf("ListMovieTitles: %v", err)
	}
	if len(titles) != 2 || titles[0].Title != "Alien" {
		t.Fatalf("titles = %+v", titles)
	}
}
