package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Inventario-offline/internal/application/analytics"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
)

// AnalyticsHandler expone predicciones, anomalías y reposición (protegido).
// Todo es derivado del snapshot local: su validez la acota la recencia del caché.
type AnalyticsHandler struct {
	store         *store.Store
	replenishment *appanalytics.ReplenishmentUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(s *store.Store, r *appanalytics.ReplenishmentUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{store: s, replenishment: r}
}

// Predictions devuelve las proyecciones de demanda por producto.
func (h *AnalyticsHandler) Predictions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.store.Predictions()})
}

// Anomalies devuelve la puntuación de anomalía por movimiento.
// ?only_flagged=true filtra a los marcados como anómalos.
func (h *AnalyticsHandler) Anomalies(c *fiber.Ctx) error {
	items := h.store.Anomalies()
	if c.QueryBool("only_flagged", false) {
		flagged := items[:0]
		for _, a := range items {
			if a.IsAnomalous {
				flagged = append(flagged, a)
			}
		}
		items = flagged
	}
	return c.JSON(fiber.Map{"items": items})
}

// Replenishment devuelve la lista priorizada de reposición.
func (h *AnalyticsHandler) Replenishment(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.replenishment.GenerateReplenishmentList()})
}
