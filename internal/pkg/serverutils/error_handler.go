package serverutils

import (
	"errors"

	"collab-notepad-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service errors onto HTTP responses.
// Every error surfaces to the caller as a distinguishable status; nothing is
// swallowed or retried.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var vErr *apperrors.ValidationError
		var fErr *fiber.Error

		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, "Resource not found"))
		case errors.Is(err, apperrors.ErrUnauthorized):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Unauthorized"))
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid credentials"))
		case errors.As(err, &vErr):
			body := ErrorResponse(fiber.StatusBadRequest, vErr.Error())
			body.Fields = vErr.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(body)
		case errors.As(err, &fErr):
			return ctx.Status(fErr.Code).JSON(ErrorResponse(fErr.Code, fErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
