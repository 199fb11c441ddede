package handlers

import (
	"movie-ratings/internal/models"
	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AnalyticsHandler struct {
	pages
	service services.RatingService
}

func NewAnalyticsHandler(service services.RatingService, flash *Flasher, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		pages:   pages{flash: flash, logger: logger},
		service: service,
	}
}

// Show renders average rating and count per movie, best first.
func (h *AnalyticsHandler) Show(c *fiber.Ctx) error {
	summaries, err := h.service.AggregateRatings(c.Context())
	if err != nil {
		h.logFailure(c, err)
		return h.render(c, "analytics", fiber.Map{"Chart": models.NewChartData(nil)},
			Flash{Severity: SeverityDanger, Message: err.Error()})
	}

	return h.render(c, "analytics", fiber.Map{
		"Summaries": summaries,
		"Chart":     models.NewChartData(summaries),
	})
}
