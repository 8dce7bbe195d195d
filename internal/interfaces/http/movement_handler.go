package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
)

// MovementHandler maneja las peticiones HTTP para movimientos de inventario (protegido).
type MovementHandler struct {
	store *store.Store
}

// NewMovementHandler construye el handler.
func NewMovementHandler(s *store.Store) *MovementHandler {
	return &MovementHandler{store: s}
}

// List devuelve el historial local de movimientos.
func (h *MovementHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.store.Movements()})
}

// Create registra un movimiento vía el store.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.store.CreateMovement(c.Context(), GetActor(c), in)
	if err != nil {
		return mapStoreError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
