package handlers

import (
	"strings"

	"movie-ratings/internal/models"
	"movie-ratings/internal/services"
	"movie-ratings/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// APIHandler serves read-only JSON views of the catalogue.
type APIHandler struct {
	movies  services.MovieService
	ratings services.RatingService
	logger  *logrus.Logger
}

func NewAPIHandler(movies services.MovieService, ratings services.RatingService, logger *logrus.Logger) *APIHandler {
	return &APIHandler{
		movies:  movies,
		ratings: ratings,
		logger:  logger,
	}
}

// MovieWithRatings is a movie and its ratings, newest first.
type MovieWithRatings struct {
	Movie   *models.Movie   `json:"movie"`
	Ratings []models.Rating `json:"ratings"`
}

func (h *APIHandler) fail(c *fiber.Ctx, err error) error {
	code := utils.HTTPStatus(err)
	if code >= fiber.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Path()).Error("API request failed")
	}
	return utils.ErrorResponse(c, code, err.Error())
}

// ListMovies godoc
// @Summary List movies
// @Description List movies sorted by title, optionally filtered by a case-insensitive title substring
// @Tags movies
// @Produce json
// @Param q query string false "Title contains"
// @Success 200 {object} utils.StandardResponse{data=[]models.Movie} "List of movies"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies [get]
func (h *APIHandler) ListMovies(c *fiber.Ctx) error {
	movies, err := h.movies.ListMovies(c.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Movies retrieved successfully", movies)
}

// GetMovie godoc
// @Summary Get movie by ID
// @Description Get a single movie and its ratings, newest first
// @Tags movies
// @Produce json
// @Param id path string true "Movie ID (24 hex characters)"
// @Success 200 {object} utils.StandardResponse{data=MovieWithRatings} "Movie details"
// @Failure 400 {object} utils.StandardResponse "Invalid movie ID"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *APIHandler) GetMovie(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie id.")
	}

	movie, err := h.movies.GetMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	ratings, err := h.ratings.ListRatingsForMovie(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie retrieved successfully", MovieWithRatings{
		Movie:   movie,
		Ratings: ratings,
	})
}

// Analytics godoc
// @Summary Rating analytics
// @Description Average rating (two decimals) and rating count per movie, highest average first
// @Tags analytics
// @Produce json
// @Success 200 {object} utils.StandardResponse{data=models.ChartData} "Chart series"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /analytics [get]
func (h *APIHandler) Analytics(c *fiber.Ctx) error {
	summaries, err := h.ratings.AggregateRatings(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", models.NewChartData(summaries))
}
