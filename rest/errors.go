// Package rest exposes the bookshop domain over HTTP with Fiber:
// registration, login, account verification, the public book
// inventory, and the authenticated cart and checkout endpoints. All
// resource CRUD goes through the generic controller in resource.go.
package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/paperleaf/bookshop"
)

// NewErrorHandler translates rich errors into structured JSON
// responses. Every handler failure funnels through here; nothing is
// swallowed.
func NewErrorHandler(logger bookshop.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"message": fiberErr.Message,
				},
			})
		}

		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := statusFor(richErr)
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request failed: %s (%s)", richErr.Message, richErr.Category)
		} else {
			logger.Debug("Request rejected: %s (%s)", richErr.Message, richErr.Category)
		}

		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   richErr.Message,
				"text_code": richErr.TextCode,
				"category":  richErr.Category,
			},
		})
	}
}

func statusFor(richErr *errors.Error) int {
	// invalid tokens keep the 406 the original API contract used
	if richErr.TextCode == bookshop.TextCodeTokenInvalid {
		return fiber.StatusNotAcceptable
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
