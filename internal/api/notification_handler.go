package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/service"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	notifications, err := h.notificationService.List(c.Context(), user.ID, page, limit)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Notifications", fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid notification id")
	}

	if err := h.notificationService.MarkRead(c.Context(), id, user.ID); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	if err := h.notificationService.MarkAllRead(c.Context(), user.ID); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "All notifications marked as read", nil)
}
