package handlers

import (
	"errors"
	"time"

	"movie-ratings/internal/models"
	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RatingHandler struct {
	pages
	service      services.RatingService
	movieService services.MovieService
	// loc interprets and displays form timestamps.
	loc *time.Location
}

func NewRatingHandler(service services.RatingService, movieService services.MovieService, flash *Flasher, loc *time.Location, logger *logrus.Logger) *RatingHandler {
	if loc == nil {
		loc = time.Local
	}
	return &RatingHandler{
		pages:        pages{flash: flash, logger: logger},
		service:      service,
		movieService: movieService,
		loc:          loc,
	}
}

func (h *RatingHandler) List(c *fiber.Ctx) error {
	ratings, titles, err := h.service.ListAllRatings(c.Context())
	if err != nil {
		h.logFailure(c, err)
		return h.render(c, "ratings_list", fiber.Map{}, Flash{Severity: SeverityDanger, Message: err.Error()})
	}

	return h.render(c, "ratings_list", fiber.Map{
		"Ratings": ratings,
		"Titles":  titles,
	})
}

// movieChoices loads the movie picker. When ok is false there is nothing to
// rate and the response has already been written.
func (h *RatingHandler) movieChoices(c *fiber.Ctx) (titles []models.MovieTitle, ok bool, err error) {
	titles, err = h.movieService.ListMovieTitles(c.Context())
	if err != nil {
		return nil, false, h.fail(c, err, "/ratings")
	}
	if len(titles) == 0 {
		return nil, false, h.redirect(c, SeverityWarning, "Please add a movie before creating ratings.", "/movies/new")
	}
	return titles, true, nil
}

func (h *RatingHandler) NewForm(c *fiber.Ctx) error {
	titles, ok, err := h.movieChoices(c)
	if !ok {
		return err
	}

	return h.render(c, "rating_form", fiber.Map{
		"Movies":        titles,
		"SelectedMovie": c.Query("movie"),
		"Timestamp":     "",
		"Action":        "/ratings/new",
	})
}

func (h *RatingHandler) Create(c *fiber.Ctx) error {
	if _, ok, err := h.movieChoices(c); !ok {
		return err
	}

	_, err := h.service.CreateRating(c.Context(), ratingInputFromForm(c, h.loc))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return h.fail(c, err, "/ratings/new")
		}
		return h.fail(c, err, "/ratings")
	}

	return h.redirect(c, SeveritySuccess, "Rating created successfully.", "/ratings")
}

func (h *RatingHandler) EditForm(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid rating id.", "/ratings")
	}

	rating, err := h.service.GetRating(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "/ratings")
	}

	titles, err := h.movieService.ListMovieTitles(c.Context())
	if err != nil {
		return h.fail(c, err, "/ratings")
	}

	return h.render(c, "rating_form", fiber.Map{
		"Title":         "Edit rating",
		"Rating":        rating,
		"Movies":        titles,
		"SelectedMovie": rating.MovieID.Hex(),
		"Timestamp":     formatTimestamp(rating.Timestamp, h.loc),
		"Action":        "/ratings/" + id.Hex() + "/edit",
	})
}

func (h *RatingHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid rating id.", "/ratings")
	}

	_, err := h.service.UpdateRating(c.Context(), id, ratingInputFromForm(c, h.loc))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return h.fail(c, err, "/ratings/"+id.Hex()+"/edit")
		}
		return h.fail(c, err, "/ratings")
	}

	return h.redirect(c, SeveritySuccess, "Rating updated successfully.", "/ratings")
}

func (h *RatingHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid rating id.", "/ratings")
	}

	if err := h.service.DeleteRating(c.Context(), id); err != nil {
		return h.fail(c, err, "/ratings")
	}

	return h.redirect(c, SeveritySuccess, "Rating deleted.", "/ratings")
}
