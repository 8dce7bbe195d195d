// Package analytics expone los casos de uso analíticos del dashboard sobre el
// estado local: sugerencias de reposición derivadas del snapshot cacheado y de
// las proyecciones de demanda.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// ReplenishmentUseCase genera la lista de reposición a partir del store local.
// Opera sobre la copia cacheada: su validez la acota la recencia del snapshot,
// igual que las predicciones que consume.
type ReplenishmentUseCase struct {
	store *store.Store
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(s *store.Store) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{store: s}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la
// cantidad sugerida de pedido (demanda proyectada + retorno al punto de
// reorden) y un ranking de prioridad por déficit relativo y demanda esperada.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList() []dto.ReplenishmentSuggestionDTO {
	products := uc.store.Products()
	predictions := uc.store.Predictions()

	predByID := make(map[string]entity.StockPrediction, len(predictions))
	for _, p := range predictions {
		predByID[p.ProductID] = p
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, item := range products {
		if item.ReorderPoint.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if item.Stock.GreaterThan(item.ReorderPoint) {
			continue
		}

		pred := predByID[item.ID]
		deficit := item.ReorderPoint.Sub(item.Stock)
		suggestedQty := deficit.Add(pred.ExpectedDemand)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			continue
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         item.ID,
			SKU:               item.SKU,
			ProductName:       item.Name,
			CurrentStock:      item.Stock,
			ReorderPoint:      item.ReorderPoint,
			ExpectedDemand:    pred.ExpectedDemand,
			SuggestedOrderQty: suggestedQty,
			EstimatedCost:     suggestedQty.Mul(item.Cost),
			Confidence:        pred.Confidence,
		})
	}

	// Ordenar: primero mayor déficit relativo (% de caída bajo el reorden),
	// luego mayor demanda proyectada; el SKU desempata para estabilidad.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderPoint.Sub(a.CurrentStock).Div(a.ReorderPoint)
		defB := b.ReorderPoint.Sub(b.CurrentStock).Div(b.ReorderPoint)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		if !a.ExpectedDemand.Equal(b.ExpectedDemand) {
			return a.ExpectedDemand.GreaterThan(b.ExpectedDemand)
		}
		return a.SKU < b.SKU
	})

	// Prioridad 1 = más urgente.
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions
}
