package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"pocketlog/internal/middleware"
	"pocketlog/internal/models"
	"pocketlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto a status code and the standard error body.
// Details of upstream and internal failures are logged, never returned.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Request conflicts with existing data",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		log.Printf("Unauthorized %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
		})
	case errors.Is(err, services.ErrUpstreamAuth):
		log.Printf("Identity provider error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to process the login with the identity provider",
		})
	default:
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}

// validationFailed reports validator errors per field, or a generic bad body for anything else.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// ErrorHandler is the fiber.Config ErrorHandler for errors no handler turned into a response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"message": fe.Message,
		})
	}
	return respondError(c, err)
}

func currentUser(c *fiber.Ctx) (int64, error) {
	id, ok := middleware.ExternalID(c)
	if !ok {
		return 0, services.ErrUnauthorized
	}
	return id, nil
}

func queryDate(c *fiber.Ctx, key string) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is required", services.ErrValidation, key)
	}
	date, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be YYYY-MM-DD", services.ErrValidation, key)
	}
	return date, nil
}

// queryMonth reads a YYYY-MM or YYYY-MM-DD parameter, defaulting to the current month.
func queryMonth(c *fiber.Ctx, key string) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return models.MonthStart(time.Now().UTC()), nil
	}
	month, err := models.ParseMonth(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be YYYY-MM or YYYY-MM-DD", services.ErrValidation, key)
	}
	return month, nil
}

func queryUint(c *fiber.Ctx, key string) (uint, error) {
	value := c.Query(key)
	if value == "" {
		return 0, fmt.Errorf("%w: query parameter %q is required", services.ErrValidation, key)
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q must be a positive integer", services.ErrValidation, key)
	}
	return uint(n), nil
}
