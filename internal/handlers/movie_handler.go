package handlers

import (
	"errors"
	"strings"

	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	pages
	service       services.MovieService
	ratingService services.RatingService
	uploads       bool
}

func NewMovieHandler(service services.MovieService, ratingService services.RatingService, flash *Flasher, uploads bool, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		pages:         pages{flash: flash, logger: logger},
		service:       service,
		ratingService: ratingService,
		uploads:       uploads,
	}
}

// List renders the movie index, filtered by ?q= when present.
func (h *MovieHandler) List(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))

	movies, err := h.service.ListMovies(c.Context(), q)
	if err != nil {
		h.logFailure(c, err)
		return h.render(c, "movies_list", fiber.Map{"Q": q}, Flash{Severity: SeverityDanger, Message: err.Error()})
	}

	return h.render(c, "movies_list", fiber.Map{
		"Movies": movies,
		"Q":      q,
	})
}

func (h *MovieHandler) NewForm(c *fiber.Ctx) error {
	return h.render(c, "movie_form", fiber.Map{
		"Action":  "/movies/new",
		"Uploads": h.uploads,
	})
}

func (h *MovieHandler) Create(c *fiber.Ctx) error {
	_, err := h.service.CreateMovie(c.Context(), movieInputFromForm(c))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return h.fail(c, err, "/movies/new")
		}
		return h.fail(c, err, "/")
	}

	return h.redirect(c, SeveritySuccess, "Movie created successfully.", "/")
}

func (h *MovieHandler) EditForm(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid movie id.", "/")
	}

	movie, err := h.service.GetMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "/")
	}

	return h.render(c, "movie_form", fiber.Map{
		"Title":   "Edit movie",
		"Movie":   movie,
		"Action":  "/movies/" + id.Hex() + "/edit",
		"Uploads": h.uploads,
	})
}

func (h *MovieHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid movie id.", "/")
	}

	_, err := h.service.UpdateMovie(c.Context(), id, movieInputFromForm(c))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return h.fail(c, err, "/movies/"+id.Hex()+"/edit")
		}
		return h.fail(c, err, "/")
	}

	return h.redirect(c, SeveritySuccess, "Movie updated successfully.", "/")
}

// Delete removes the movie together with its ratings.
func (h *MovieHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid movie id.", "/")
	}

	removed, err := h.service.DeleteMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "/")
	}

	h.logger.WithFields(logrus.Fields{"id": id.Hex(), "ratings": removed}).Debug("Cascade delete finished")
	return h.redirect(c, SeveritySuccess, "Movie and its ratings deleted.", "/")
}

func (h *MovieHandler) Detail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, SeverityDanger, "Invalid movie id.", "/")
	}

	movie, err := h.service.GetMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "/")
	}

	ratings, err := h.ratingService.ListRatingsForMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "/")
	}

	return h.render(c, "movie_detail", fiber.Map{
		"Title":   movie.Title,
		"Movie":   movie,
		"Ratings": ratings,
	})
}
