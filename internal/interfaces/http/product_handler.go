package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	"github.com/jhoicas/Inventario-offline/internal/domain"
)

// ProductHandler maneja las peticiones HTTP para Product (protegido).
// Las mutaciones pasan por el store: ruta en línea si hay conectividad,
// aplicación optimista + cola si no.
type ProductHandler struct {
	store *store.Store
}

// NewProductHandler construye el handler.
func NewProductHandler(s *store.Store) *ProductHandler {
	return &ProductHandler{store: s}
}

// List devuelve la colección local de productos (confirmados y pendientes).
func (h *ProductHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.store.Products()})
}

// Create crea un producto vía el store.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.store.CreateProduct(c.Context(), GetActor(c), in)
	if err != nil {
		return mapStoreError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza un producto vía el store.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.store.UpdateProduct(c.Context(), GetActor(c), id, in)
	if err != nil {
		return mapStoreError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un producto vía el store.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.store.DeleteProduct(c.Context(), GetActor(c), id); err != nil {
		return mapStoreError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// mapStoreError traduce errores de dominio a códigos HTTP.
func mapStoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
