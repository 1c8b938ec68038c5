package api

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
	"github.com/MostTP/EduWave-Backend/internal/token"
)

const currentUserKey = "currentUser"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the bearer access token and attaches the resolved
// user to the request. Expiry gets its own message so clients know to hit
// the refresh endpoint instead of logging in again.
func Authenticate(tokens *token.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return fail(c, fiber.StatusUnauthorized, "Missing or malformed authorization header")
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return fail(c, fiber.StatusUnauthorized, "Access token has expired")
			}
			return fail(c, fiber.StatusUnauthorized, "Invalid access token")
		}

		user, err := users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fail(c, fiber.StatusUnauthorized, "Account no longer exists")
			}
			return fail(c, fiber.StatusInternalServerError, "Something went wrong")
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// OptionalAuthenticate resolves the identity when a valid token is present
// and stays silent otherwise; handlers branch on CurrentUser.
func OptionalAuthenticate(tokens *token.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			return c.Next()
		}

		user, err := users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Next()
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// RequireRoles runs after Authenticate and rejects identities outside the
// allowed set.
func RequireRoles(allowed ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fail(c, fiber.StatusUnauthorized, "Authentication required")
		}
		for _, role := range allowed {
			if user.Role == role {
				return c.Next()
			}
		}
		return fail(c, fiber.StatusForbidden, "Insufficient permissions")
	}
}

func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals(currentUserKey).(*model.User)
	return user, ok
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()

		statusCode := c.Response().StatusCode()
		if err != nil {
			var e *fiber.Error
			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		labels := []string{c.Method(), c.Route().Path, fmt.Sprintf("%d", statusCode)}
		httpRequestTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(duration)

		return err
	}
}
