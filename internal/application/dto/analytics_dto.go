package dto

import "github.com/shopspring/decimal"

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo
// su punto de reorden, enriquecida con la proyección de demanda local.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	ExpectedDemand    decimal.Decimal `json:"expected_demand"` // en el horizonte de predicción
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	Confidence        float64         `json:"confidence"`
	Priority          int             `json:"priority"` // 1 = más urgente
}
