package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// Parámetros del motor predictivo.
const (
	// DefaultHorizonDays horizonte de proyección de demanda.
	DefaultHorizonDays = 7
	// MinObservations cubetas (o movimientos previos) mínimas para ajustar
	// tendencia; por debajo se degrada a un resultado de baja confianza.
	MinObservations = 3
	// maxLookbackDays ventana máxima de historial considerada.
	maxLookbackDays = 90
	// lowConfidence confianza asignada cuando el historial es escaso.
	lowConfidence = 0.25
	// maxConfidence tope de confianza; una serie local nunca es certeza.
	maxConfidence = 0.95
)

// PredictDemand proyecta la demanda de un producto sobre horizonDays a partir
// de sus salidas históricas agrupadas en cubetas diarias. Determinista para un
// historial idéntico; con menos de MinObservations cubetas con salida devuelve
// una banda ancha de baja confianza en lugar de error.
func PredictDemand(productID string, movements []entity.Movement, horizonDays int, now time.Time) entity.StockPrediction {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	pred := entity.StockPrediction{
		ProductID:      productID,
		HorizonDays:    horizonDays,
		ExpectedDemand: decimal.Zero,
		LowerBound:     decimal.Zero,
		UpperBound:     decimal.Zero,
		GeneratedAt:    now,
	}

	series, nonEmpty := dailyOutbound(productID, movements, now)
	n := len(series)
	if n == 0 {
		// Sin historial: demanda proyectada cero, confianza nula. No es error.
		return pred
	}

	var total float64
	for _, q := range series {
		total += q
	}
	mean := total / float64(n)

	if nonEmpty < MinObservations {
		// Historial escaso: media plana con banda ancha [0, 2x].
		expected := mean * float64(horizonDays)
		pred.ExpectedDemand = toQty(expected)
		pred.UpperBound = toQty(2 * expected)
		pred.Confidence = lowConfidence
		return pred
	}

	// Mínimos cuadrados sobre la serie diaria completa (incluye días sin salida,
	// que son demanda cero real, no datos faltantes).
	slope, intercept := leastSquares(series)

	var expected float64
	for t := n; t < n+horizonDays; t++ {
		d := intercept + slope*float64(t)
		if d > 0 {
			expected += d
		}
	}

	sigma := residualStddev(series, slope, intercept)
	margin := 1.96 * sigma * math.Sqrt(float64(horizonDays))

	pred.ExpectedDemand = toQty(expected)
	pred.LowerBound = toQty(math.Max(0, expected-margin))
	pred.UpperBound = toQty(expected + margin)
	pred.Confidence = confidence(sigma, mean)
	return pred
}

// dailyOutbound agrupa las salidas del producto en cubetas diarias UTC desde la
// primera hasta la última salida observada (acotado a maxLookbackDays respecto
// de now). Los días intermedios sin salida son demanda cero real; el día en
// curso, incompleto, no entra en la serie como cero artificial. Devuelve la
// serie y cuántas cubetas tienen salida.
func dailyOutbound(productID string, movements []entity.Movement, now time.Time) ([]float64, int) {
	today := now.UTC().Truncate(24 * time.Hour)
	var earliest, latest time.Time
	byDay := make(map[int64]float64)

	for _, m := range movements {
		if m.ProductID != productID || m.Type != entity.MovementTypeOUT {
			continue
		}
		day := m.Date.UTC().Truncate(24 * time.Hour)
		if day.After(today) {
			continue
		}
		if today.Sub(day) > time.Duration(maxLookbackDays-1)*24*time.Hour {
			continue
		}
		qty, _ := m.Quantity.Abs().Float64()
		byDay[day.Unix()] += qty
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
		if latest.IsZero() || day.After(latest) {
			latest = day
		}
	}
	if len(byDay) == 0 {
		return nil, 0
	}

	days := int(latest.Sub(earliest)/(24*time.Hour)) + 1
	series := make([]float64, days)
	nonEmpty := 0
	for i := 0; i < days; i++ {
		day := earliest.Add(time.Duration(i) * 24 * time.Hour)
		q := byDay[day.Unix()]
		series[i] = q
		if q > 0 {
			nonEmpty++
		}
	}
	return series, nonEmpty
}

// leastSquares ajusta y = intercept + slope*t sobre la serie (t = índice de día).
func leastSquares(series []float64) (slope, intercept float64) {
	n := float64(len(series))
	var sumT, sumY, sumTY, sumTT float64
	for t, y := range series {
		ft := float64(t)
		sumT += ft
		sumY += y
		sumTY += ft * y
		sumTT += ft * ft
	}
	den := n*sumTT - sumT*sumT
	if den == 0 {
		return 0, sumY / n
	}
	slope = (n*sumTY - sumT*sumY) / den
	intercept = (sumY - slope*sumT) / n
	return slope, intercept
}

// residualStddev desviación estándar de los residuos del ajuste lineal.
func residualStddev(series []float64, slope, intercept float64) float64 {
	n := len(series)
	if n <= 2 {
		return 0
	}
	var ss float64
	for t, y := range series {
		r := y - (intercept + slope*float64(t))
		ss += r * r
	}
	return math.Sqrt(ss / float64(n-2))
}

// confidence decrece con la dispersión relativa de la serie.
func confidence(sigma, mean float64) float64 {
	rel := sigma / (mean + 1)
	c := 1 / (1 + rel)
	if c < lowConfidence {
		return lowConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// toQty redondea una cantidad proyectada a 4 decimales.
func toQty(v float64) decimal.Decimal {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(4)
}
