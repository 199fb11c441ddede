package utils

import (
	"errors"

	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Envelope statuses. "fail" is the caller's fault, "error" is ours.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// StandardResponse is the body of every JSON API reply.
type StandardResponse struct {
	Status  string      `json:"status" example:"success"`
	Code    int         `json:"code" example:"200"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(StandardResponse{
		Status:  StatusSuccess,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, code int, message string) error {
	status := StatusFail
	if code >= fiber.StatusInternalServerError {
		status = StatusError
	}
	return c.Status(code).JSON(StandardResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// HTTPStatus maps a service error to the status code reported for it.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
