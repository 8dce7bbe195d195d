package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste
)

// Movement representa un movimiento de inventario (entrada, salida o ajuste).
type Movement struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"` // positivo entrada/ajuste+, negativo salida
	Reference string          `json:"reference"` // factura, orden, nota de ajuste, etc.
	Notes     string          `json:"notes"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"` // actor del dashboard

	SyncStatus      string `json:"sync_status"`
	PendingActionID string `json:"pending_action_id,omitempty"`
}
