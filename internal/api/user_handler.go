package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/service"
)

type UserHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return respond(c, fiber.StatusOK, "Profile", fiber.Map{"user": toUserResponse(user)})
}

type UpdateRoleRequest struct {
	Role model.Role `json:"role" validate:"required"`
}

// UpdateRole is the admin-only path for role changes; the route is guarded
// by RequireRoles(RoleAdmin).
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if err := h.authService.UpdateRole(c.Context(), userID, req.Role); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Role updated", nil)
}
