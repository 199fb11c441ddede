package handlers

import (
	"movie-ratings/internal/services"
	"movie-ratings/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UploadHandler struct {
	posters services.PosterStorage
	logger  *logrus.Logger
}

// NewUploadHandler accepts a nil storage; uploads then answer 503.
func NewUploadHandler(posters services.PosterStorage, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		posters: posters,
		logger:  logger,
	}
}

// GetPresignedURL hands the browser a short-lived URL to PUT a poster image to.
func (h *UploadHandler) GetPresignedURL(c *fiber.Ctx) error {
	if h.posters == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Poster storage is not configured")
	}

	filename := c.Query("filename")
	if filename == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "filename is required")
	}
	contentType := c.Query("contentType", "image/jpeg")

	uploadURL, publicURL, err := h.posters.PresignUpload(c.Context(), filename, contentType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate presigned URL")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate presigned URL")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Presigned URL generated successfully", services.PosterUpload{
		UploadURL: uploadURL,
		PublicURL: publicURL,
		ExpiresIn: int(services.PresignExpiry.Seconds()),
	})
}
