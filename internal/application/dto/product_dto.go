package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Stock        decimal.Decimal `json:"stock"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	UnitMeasure  string          `json:"unit_measure"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	ReorderPoint *decimal.Decimal `json:"reorder_point"`
	UnitMeasure  *string          `json:"unit_measure"`
}
