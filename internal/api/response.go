package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MostTP/EduWave-Backend/internal/service"
	"github.com/MostTP/EduWave-Backend/internal/tools"
)

// Envelope is the response shape of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}

// failFromService maps the service error taxonomy onto HTTP statuses.
// Anything unmapped is an internal failure and must not leak detail.
func failFromService(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return fail(c, fiber.StatusConflict, "Email is already registered")
	case errors.Is(err, service.ErrPasswordMismatch):
		return fail(c, fiber.StatusBadRequest, "Passwords do not match")
	case errors.Is(err, service.ErrPasswordTooShort):
		return fail(c, fiber.StatusBadRequest, "Password must be at least 8 characters")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrEmailNotVerified):
		return fail(c, fiber.StatusForbidden, "Please verify your email address first")
	case errors.Is(err, service.ErrTokenExpired):
		return fail(c, fiber.StatusUnauthorized, "Token has expired")
	case errors.Is(err, service.ErrTokenInvalid):
		return fail(c, fiber.StatusBadRequest, "Token is invalid")
	case errors.Is(err, service.ErrRefreshTokenMismatch):
		return fail(c, fiber.StatusUnauthorized, "Refresh token is no longer valid")
	case errors.Is(err, service.ErrAlreadyVerified):
		return fail(c, fiber.StatusBadRequest, "Email is already verified")
	case errors.Is(err, service.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidRole):
		return fail(c, fiber.StatusBadRequest, "Unknown role")
	case errors.Is(err, service.ErrEmailDispatch):
		return fail(c, fiber.StatusBadGateway, "Failed to send email, please try again later")
	case errors.Is(err, service.ErrCourseNotFound):
		return fail(c, fiber.StatusNotFound, "Course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return fail(c, fiber.StatusForbidden, "You do not own this course")
	case errors.Is(err, service.ErrNoProgress):
		return fail(c, fiber.StatusNotFound, "No progress recorded")
	case errors.Is(err, service.ErrCourseNoLessons):
		return fail(c, fiber.StatusBadRequest, "Course has no lessons")
	case errors.Is(err, tools.ErrUnknownTool):
		return fail(c, fiber.StatusNotFound, "Unknown tool")
	case tools.IsParamError(err):
		return fail(c, fiber.StatusBadRequest, err.Error())
	default:
		return fail(c, fiber.StatusInternalServerError, "Something went wrong")
	}
}
