package handlers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimestampLayout is the value format of an HTML datetime-local input.
const TimestampLayout = "2006-01-02T15:04"

var timestampLayouts = []string{TimestampLayout, "2006-01-02T15:04:05"}

// formValue copies the value out of the request buffer, which fasthttp
// reuses once the handler returns.
func formValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(strings.TrimSpace(c.FormValue(key)))
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalInt accepts plain digits only. Anything else is absent.
func optionalInt(s string) *int {
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// parseTimestamp reads a datetime-local value in loc. The zero time means the
// value was empty or unparsable.
func parseTimestamp(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func formatTimestamp(ts time.Time, loc *time.Location) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(loc).Format(TimestampLayout)
}

func movieInputFromForm(c *fiber.Ctx) services.MovieInput {
	return services.MovieInput{
		Title:       formValue(c, "title"),
		ReleaseYear: optionalInt(formValue(c, "release_year")),
		Genre:       optionalString(formValue(c, "genre")),
		Overview:    optionalString(formValue(c, "overview")),
		Runtime:     optionalInt(formValue(c, "runtime")),
		PosterURL:   optionalString(formValue(c, "poster_url")),
	}
}

func ratingInputFromForm(c *fiber.Ctx, loc *time.Location) services.RatingInput {
	return services.RatingInput{
		UserID:    formValue(c, "userId"),
		MovieID:   formValue(c, "movieId"),
		Value:     optionalFloat(formValue(c, "rating")),
		Timestamp: parseTimestamp(formValue(c, "timestamp"), loc),
	}
}

func pathID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	return id, err == nil
}
