package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrediction es la proyección de demanda de un producto sobre un horizonte
// fijo. Valor derivado: siempre recomputable desde el historial de movimientos,
// nunca se persiste como estado autoritativo.
type StockPrediction struct {
	ProductID      string          `json:"product_id"`
	HorizonDays    int             `json:"horizon_days"`
	ExpectedDemand decimal.Decimal `json:"expected_demand"` // unidades proyectadas en el horizonte
	LowerBound     decimal.Decimal `json:"lower_bound"`
	UpperBound     decimal.Decimal `json:"upper_bound"`
	Confidence     float64         `json:"confidence"` // 0..1; bajo con historial escaso
	GeneratedAt    time.Time       `json:"generated_at"`
}

// AnomalyResult es la puntuación de desviación de un movimiento frente al
// patrón reciente del producto. Derivado y recomputable, igual que StockPrediction.
type AnomalyResult struct {
	MovementID  string  `json:"movement_id"`
	IsAnomalous bool    `json:"is_anomalous"`
	Reason      string  `json:"reason"` // descripción legible para el dashboard
	Score       float64 `json:"score"`  // desviaciones estándar frente a la media histórica
}
