package serverutils

import (
	"errors"

	"prime-research/internal/service"
	"prime-research/pkg/ai/pipeline"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope with a matching status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusCode(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusCode maps domain errors to HTTP status codes.
func StatusCode(err error) int {
	var fiberErr *fiber.Error
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErrs):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrRunInProgress):
		return fiber.StatusConflict
	case errors.Is(err, pipeline.ErrMissingTopic):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
