package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"movie-ratings/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRenderPagesWithLayout(t *testing.T) {
	e := New(time.UTC)
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	year := 2010
	movie := &models.Movie{ID: primitive.NewObjectID(), Title: "Inception", ReleaseYear: &year}
	rating := models.Rating{
		ID:        primitive.NewObjectID(),
		UserID:    "alice",
		MovieID:   movie.ID,
		Value:     9.5,
		Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
	}
	summaries := []models.RatingSummary{{MovieID: movie.ID, Title: "Inception", AverageRating: 9.5, Count: 1}}

	pages := []struct {
		name    string
		binding map[string]interface{}
		want    []string
	}{
		{"movies_list", map[string]interface{}{"Movies": []models.Movie{*movie}, "Q": "inc"}, []string{"Inception", "2010", `value="inc"`}},
		{"movie_form", map[string]interface{}{"Action": "/movies/new"}, []string{"New movie", `action="/movies/new"`}},
		{"movie_form", map[string]interface{}{"Movie": movie, "Action": "/x", "Uploads": true}, []string{"Edit Inception", "poster_file"}},
		{"movie_detail", map[string]interface{}{"Movie": movie, "Ratings": []models.Rating{rating}}, []string{"Inception", "alice", "9.5"}},
		{"ratings_list", map[string]interface{}{
			"Ratings": []models.Rating{rating, {ID: primitive.NewObjectID(), MovieID: primitive.NewObjectID(), UserID: "bob"}},
			"Titles":  map[string]string{movie.ID.Hex(): "Inception"},
		}, []string{"Inception", "(deleted movie)"}},
		{"rating_form", map[string]interface{}{
			"Movies":        []models.MovieTitle{{ID: movie.ID, Title: "Inception"}},
			"SelectedMovie": movie.ID.Hex(),
			"Timestamp":     "2024-03-01T12:30",
			"Action":        "/ratings/new",
		}, []string{"selected", `value="2024-03-01T12:30"`}},
		{"analytics", map[string]interface{}{"Summaries": summaries, "Chart": models.NewChartData(summaries)}, []string{"9.50", "avg_values"}},
	}

	for _, p := range pages {
		t.Run(p.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := e.Render(&buf, p.name, p.binding, "layout"); err != nil {
				t.Fatalf("Render: %v", err)
			}
			out := buf.String()
			if !strings.HasPrefix(out, "<!doctype html>") {
				t.Fatalf("layout not applied:\n%s", out)
			}
			for _, want := range p.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderEscapesUserText(t *testing.T) {
	var buf bytes.Buffer
	movie := models.Movie{ID: primitive.NewObjectID(), Title: "<script>alert(1)</script>"}
	e := New(time.UTC)
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Render(&buf, "movies_list", map[string]interface{}{"Movies": []models.Movie{movie}}, "layout"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)") {
		t.Fatal("title was not escaped")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	e := New(time.UTC)
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Render(&bytes.Buffer{}, "nope", nil); err == nil {
		t.Fatal("expected an error for an unknown page")
	}
}

func TestNewFromFS(t *testing.T) {
	files := fstest.MapFS{
		"layout.html": {Data: []byte(`[{{embed}}]`)},
		"hello.html":  {Data: []byte(`hi {{.}}`)},
	}
	e := NewFromFS(files, time.UTC)
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	if err := e.Render(&buf, "hello", "there", "layout"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "[hi there]" {
		t.Fatalf("got %q", buf.String())
	}

	buf.Reset()
	if err := e.Render(&buf, "hello", "you"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "hi you" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestDatetimeUsesLocation(t *testing.T) {
	files := fstest.MapFS{
		"when.html": {Data: []byte(`{{datetime .}}`)},
	}
	ts := time.Date(2023, 7, 4, 20, 15, 0, 0, time.UTC)

	for _, tt := range []struct {
		loc  *time.Location
		want string
	}{
		{time.UTC, "2023-07-04 20:15"},
		{time.FixedZone("UTC+3", 3*60*60), "2023-07-04 23:15"},
	} {
		e := NewFromFS(files, tt.loc)
		if err := e.Load(); err != nil {
			t.Fatalf("Load: %v", err)
		}
		var buf bytes.Buffer
		if err := e.Render(&buf, "when", ts); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if buf.String() != tt.want {
			t.Errorf("datetime in %s = %q, want %q", tt.loc, buf.String(), tt.want)
		}
	}

	var buf bytes.Buffer
	e := NewFromFS(files, time.UTC)
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Render(&buf, "when", time.Time{}); err != nil || buf.String() != "" {
		t.Fatalf("zero time = %q, %v", buf.String(), err)
	}
}
