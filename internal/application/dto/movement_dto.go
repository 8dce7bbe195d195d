package dto

import "github.com/shopspring/decimal"

// CreateMovementRequest entrada para registrar un movimiento de inventario.
// Quantity siempre positiva; el signo lo determina Type (OUT se guarda negativo).
type CreateMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Type      string          `json:"type" validate:"required"` // IN, OUT, ADJUSTMENT
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}
