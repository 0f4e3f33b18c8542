package middleware

import (
	"errors"

	"fstop/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusBadRequest, false, "Validation failed!", errors)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Unauthorized, apperr.AuthCanceled:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.Validation:
		return fiber.StatusBadRequest
	case apperr.Duplicate:
		return fiber.StatusConflict
	case apperr.UpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage is the text shown to end users for err. Provider error strings
// never reach it; only Validation and Duplicate errors carry their own text.
func PublicMessage(err error) string {
	kind := apperr.KindOf(err)
	if kind == apperr.Validation || kind == apperr.Duplicate {
		if msg := apperr.Message(err); msg != "" {
			return msg
		}
	}
	switch kind {
	case apperr.NotFound:
		return "Not found!"
	case apperr.Unauthorized:
		return "Authentication required!"
	case apperr.AuthCanceled:
		return "Sign-in was cancelled."
	case apperr.Forbidden:
		return "You do not have permission to access this resource!"
	case apperr.Validation:
		return "Invalid request!"
	case apperr.Duplicate:
		return "Resource already exists!"
	case apperr.UpstreamUnavailable:
		return "Service temporarily unavailable, please try again."
	default:
		return "Something went wrong, please try again."
	}
}

// ErrorResponse writes err in the envelope. Unavailable upstreams add a retry hint.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	body := fiber.Map{
		"status":  false,
		"message": PublicMessage(err),
		"data":    nil,
	}
	if kind == apperr.UpstreamUnavailable {
		body["retry"] = true
	}
	return c.Status(StatusFor(kind)).JSON(body)
}

// ErrorHandler is installed on the Fiber app so handlers can return errors directly.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return JsonResponse(c, fe.Code, false, fe.Message, nil)
		}

		switch kind := apperr.KindOf(err); kind {
		case apperr.NotFound, apperr.Validation, apperr.Duplicate, apperr.Unauthorized, apperr.Forbidden:
		case apperr.UpstreamUnavailable:
			log.Warn("upstream unavailable", zap.String("path", c.Path()), zap.Error(err))
		default:
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return ErrorResponse(c, err)
	}
}
