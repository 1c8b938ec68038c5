package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MostTP/EduWave-Backend/internal/tools"
)

type ToolHandler struct {
	registry *tools.Registry
}

func NewToolHandler(registry *tools.Registry) *ToolHandler {
	return &ToolHandler{registry: registry}
}

func (h *ToolHandler) List(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Available tools", fiber.Map{"tools": h.registry.List()})
}

func (h *ToolHandler) Run(c *fiber.Ctx) error {
	params := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&params); err != nil {
			return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
		}
	}

	result, err := h.registry.Run(c.Params("id"), params)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Tool executed", fiber.Map{"result": result})
}
