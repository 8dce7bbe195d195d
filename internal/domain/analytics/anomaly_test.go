package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-offline/internal/domain/analytics"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var anomalyBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// movimientoOUT construye una salida del producto indicado el día base+dayOffset.
func movimientoOUT(id, productID string, qty float64, dayOffset int) entity.Movement {
	when := anomalyBase.AddDate(0, 0, dayOffset)
	return entity.Movement{
		ID:        id,
		ProductID: productID,
		Type:      entity.MovementTypeOUT,
		Quantity:  decimal.NewFromFloat(qty).Neg(),
		Date:      when,
		CreatedAt: when,
	}
}

// historial construye n salidas previas con las cantidades dadas, una por día.
func historial(productID string, qtys ...float64) []entity.Movement {
	movs := make([]entity.Movement, 0, len(qtys))
	for i, q := range qtys {
		movs = append(movs, movimientoOUT(fmt.Sprintf("mov-%d", i), productID, q, i))
	}
	return movs
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ScoreMovement
// ──────────────────────────────────────────────────────────────────────────────

// El primer movimiento de un producto jamás se marca: no existe línea base.
func TestScoreMovement_PrimerMovimientoNuncaEsAnomalo(t *testing.T) {
	primero := movimientoOUT("m1", "prod-1", 9999, 0)

	res := analytics.ScoreMovement(primero, []entity.Movement{primero})

	assert.False(t, res.IsAnomalous, "el primer movimiento no debe marcarse como anómalo")
	assert.Zero(t, res.Score)
	assert.Contains(t, res.Reason, "historial insuficiente")
}

// Con menos de MinObservations movimientos previos tampoco hay línea base.
func TestScoreMovement_HistorialEscasoNoMarca(t *testing.T) {
	movs := historial("prod-1", 10, 10)
	candidato := movimientoOUT("cand", "prod-1", 500, 10)
	movs = append(movs, candidato)

	res := analytics.ScoreMovement(candidato, movs)

	assert.False(t, res.IsAnomalous)
}

// Banda cerrada por abajo: un score exactamente en el umbral es normal.
// Historial [10,10,14,14]: media 12, desviación estándar 2. Candidato 18:
// score = |18-12|/2 = 3.0 == umbral -> no anómalo.
func TestScoreMovement_ScoreEnElUmbralEsNormal(t *testing.T) {
	movs := historial("prod-1", 10, 10, 14, 14)
	candidato := movimientoOUT("cand", "prod-1", 18, 10)
	movs = append(movs, candidato)

	res := analytics.ScoreMovement(candidato, movs)

	require.InDelta(t, analytics.AnomalyThreshold, res.Score, 1e-9,
		"el vector de prueba debe caer exactamente en el umbral")
	assert.False(t, res.IsAnomalous, "score == umbral se clasifica como normal")
}

// Justo por encima del umbral sí se marca, con razón legible.
func TestScoreMovement_PorEncimaDelUmbralMarca(t *testing.T) {
	movs := historial("prod-1", 10, 10, 14, 14)
	candidato := movimientoOUT("cand", "prod-1", 18.2, 10)
	movs = append(movs, candidato)

	res := analytics.ScoreMovement(candidato, movs)

	assert.True(t, res.IsAnomalous)
	assert.Greater(t, res.Score, analytics.AnomalyThreshold)
	assert.NotEmpty(t, res.Reason)
}

// Historial constante sin variación: una cantidad idéntica es normal,
// una distinta es atípica por definición.
func TestScoreMovement_HistorialConstante(t *testing.T) {
	movs := historial("prod-1", 5, 5, 5, 5)

	igual := movimientoOUT("igual", "prod-1", 5, 10)
	res := analytics.ScoreMovement(igual, append(movs, igual))
	assert.False(t, res.IsAnomalous)

	distinto := movimientoOUT("dist", "prod-1", 50, 10)
	res = analytics.ScoreMovement(distinto, append(movs, distinto))
	assert.True(t, res.IsAnomalous)
	assert.Contains(t, res.Reason, "historial constante")
}

// El historial de otros productos no contamina la línea base.
func TestScoreMovement_IgnoraOtrosProductos(t *testing.T) {
	otros := historial("prod-2", 10, 10, 14, 14)
	candidato := movimientoOUT("cand", "prod-1", 9999, 10)

	res := analytics.ScoreMovement(candidato, append(otros, candidato))

	assert.False(t, res.IsAnomalous, "sin historial propio no hay línea base")
}

// ScoreAll es pura: no modifica la colección de entrada y puntúa cada movimiento.
func TestScoreAll_NoMutaYCubreTodos(t *testing.T) {
	movs := historial("prod-1", 10, 10, 14, 14, 12)
	antes := make([]entity.Movement, len(movs))
	copy(antes, movs)

	results := analytics.ScoreAll(movs)

	require.Len(t, results, len(movs))
	assert.Equal(t, antes, movs, "ScoreAll no debe mutar el historial")
}
