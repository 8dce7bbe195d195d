package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-offline/internal/domain/analytics"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

var demandNow = time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)

// salidaDiaria construye una salida qty unidades el día demandNow-daysAgo.
func salidaDiaria(id string, qty float64, daysAgo int) entity.Movement {
	when := demandNow.AddDate(0, 0, -daysAgo)
	return entity.Movement{
		ID:        id,
		ProductID: "prod-1",
		Type:      entity.MovementTypeOUT,
		Quantity:  decimal.NewFromFloat(qty).Neg(),
		Date:      when,
		CreatedAt: when,
	}
}

// Sin historial: resultado definido de baja confianza, nunca un error.
func TestPredictDemand_SinHistorialDevuelveResultadoDefinido(t *testing.T) {
	pred := analytics.PredictDemand("prod-1", nil, 7, demandNow)

	assert.Equal(t, "prod-1", pred.ProductID)
	assert.Equal(t, 7, pred.HorizonDays)
	assert.True(t, pred.ExpectedDemand.IsZero())
	assert.True(t, pred.LowerBound.IsZero())
	assert.Zero(t, pred.Confidence, "sin historial la confianza es nula")
	assert.Equal(t, demandNow, pred.GeneratedAt)
}

// Historial escaso (< MinObservations cubetas con salida): banda ancha de
// baja confianza en lugar de ajuste de tendencia.
func TestPredictDemand_HistorialEscasoDegradaConfianza(t *testing.T) {
	movs := []entity.Movement{
		salidaDiaria("m1", 10, 3),
		salidaDiaria("m2", 12, 1),
	}

	pred := analytics.PredictDemand("prod-1", movs, 7, demandNow)

	assert.True(t, pred.ExpectedDemand.GreaterThan(decimal.Zero))
	assert.True(t, pred.LowerBound.IsZero(), "banda ancha: cota inferior en cero")
	assert.True(t, pred.UpperBound.GreaterThanOrEqual(pred.ExpectedDemand))
	assert.InDelta(t, 0.25, pred.Confidence, 1e-9)
}

// Determinismo: el mismo historial produce exactamente la misma proyección.
func TestPredictDemand_DeterministaParaMismoHistorial(t *testing.T) {
	movs := []entity.Movement{
		salidaDiaria("m1", 8, 6),
		salidaDiaria("m2", 9, 5),
		salidaDiaria("m3", 11, 4),
		salidaDiaria("m4", 10, 3),
		salidaDiaria("m5", 12, 2),
		salidaDiaria("m6", 13, 1),
	}

	a := analytics.PredictDemand("prod-1", movs, 7, demandNow)
	b := analytics.PredictDemand("prod-1", movs, 7, demandNow)

	assert.Equal(t, a, b)
}

// Estabilidad: una perturbación pequeña del historial mueve la proyección
// de forma acotada, sin divergencia.
func TestPredictDemand_EstableBajoPerturbacionPequena(t *testing.T) {
	base := []entity.Movement{
		salidaDiaria("m1", 10, 6),
		salidaDiaria("m2", 10, 5),
		salidaDiaria("m3", 10, 4),
		salidaDiaria("m4", 10, 3),
		salidaDiaria("m5", 10, 2),
		salidaDiaria("m6", 10, 1),
	}
	perturbado := make([]entity.Movement, len(base))
	copy(perturbado, base)
	perturbado[2] = salidaDiaria("m3", 10.01, 4)

	a := analytics.PredictDemand("prod-1", base, 7, demandNow)
	b := analytics.PredictDemand("prod-1", perturbado, 7, demandNow)

	fa, _ := a.ExpectedDemand.Float64()
	fb, _ := b.ExpectedDemand.Float64()
	assert.InDelta(t, fa, fb, 1.0, "una perturbación de 0.01 no debe mover la proyección más de una unidad")
}

// Demanda creciente: la proyección semanal supera a la de una serie plana
// con la misma media al inicio.
func TestPredictDemand_CapturaTendenciaCreciente(t *testing.T) {
	creciente := []entity.Movement{
		salidaDiaria("m1", 2, 6),
		salidaDiaria("m2", 4, 5),
		salidaDiaria("m3", 6, 4),
		salidaDiaria("m4", 8, 3),
		salidaDiaria("m5", 10, 2),
		salidaDiaria("m6", 12, 1),
	}
	plana := []entity.Movement{
		salidaDiaria("m1", 7, 6),
		salidaDiaria("m2", 7, 5),
		salidaDiaria("m3", 7, 4),
		salidaDiaria("m4", 7, 3),
		salidaDiaria("m5", 7, 2),
		salidaDiaria("m6", 7, 1),
	}

	predCreciente := analytics.PredictDemand("prod-1", creciente, 7, demandNow)
	predPlana := analytics.PredictDemand("prod-1", plana, 7, demandNow)

	assert.True(t, predCreciente.ExpectedDemand.GreaterThan(predPlana.ExpectedDemand),
		"una serie creciente debe proyectar más demanda que una plana de media similar")
}

// Las entradas (IN) y los movimientos de otros productos no cuentan como demanda.
func TestPredictDemand_SoloSalidasDelProducto(t *testing.T) {
	entrada := salidaDiaria("in1", 100, 2)
	entrada.Type = entity.MovementTypeIN
	entrada.Quantity = decimal.NewFromInt(100)
	otro := salidaDiaria("o1", 100, 2)
	otro.ProductID = "prod-2"

	pred := analytics.PredictDemand("prod-1", []entity.Movement{entrada, otro}, 7, demandNow)

	assert.True(t, pred.ExpectedDemand.IsZero())
	assert.Zero(t, pred.Confidence)
}

// Horizonte no positivo cae al valor por defecto.
func TestPredictDemand_HorizonteInvalidoUsaDefecto(t *testing.T) {
	pred := analytics.PredictDemand("prod-1", nil, 0, demandNow)
	require.Equal(t, analytics.DefaultHorizonDays, pred.HorizonDays)
}
