package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de sincronización de una entidad local frente al backend.
const (
	SyncStatusConfirmed = "confirmed" // confirmada por el backend
	SyncStatusPending   = "pending"   // aplicada optimistamente; espera el drenado de la cola
)

// Product representa un producto o SKU del inventario.
// El backend es el dueño canónico; la copia local es de lectura más las
// aplicaciones optimistas hechas mientras no hay conectividad.
type Product struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"` // código único
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"` // precio de venta
	Cost         decimal.Decimal `json:"cost"`  // costo promedio ponderado
	Stock        decimal.Decimal `json:"stock"` // existencia conocida
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	UnitMeasure  string          `json:"unit_measure"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// SyncStatus y PendingActionID marcan una copia optimista sin confirmar;
	// PendingActionID permite liquidar la entidad cuando su acción drena.
	SyncStatus      string `json:"sync_status"`
	PendingActionID string `json:"pending_action_id,omitempty"`
}
