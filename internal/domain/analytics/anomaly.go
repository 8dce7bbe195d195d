package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

const (
	// AnomalyThreshold desviaciones estándar que delimitan la banda normal.
	// La banda es cerrada por abajo y abierta por arriba: score == umbral
	// se clasifica como normal, para reproducibilidad.
	AnomalyThreshold = 3.0
	// maxBaseline movimientos previos considerados como línea base.
	maxBaseline = 30
)

// ScoreMovement puntúa la desviación de un movimiento frente al patrón
// reciente del producto. Sin línea base (menos de MinObservations movimientos
// previos) nunca marca anomalía: el primer movimiento de un producto jamás se
// señala. Función pura: no toca caché, cola ni store.
func ScoreMovement(mov entity.Movement, history []entity.Movement) entity.AnomalyResult {
	res := entity.AnomalyResult{MovementID: mov.ID}

	priors := baseline(mov, history)
	if len(priors) < MinObservations {
		res.Reason = "historial insuficiente para establecer línea base"
		return res
	}

	var sum float64
	for _, q := range priors {
		sum += q
	}
	mean := sum / float64(len(priors))

	var ss float64
	for _, q := range priors {
		d := q - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(priors)))

	qty, _ := mov.Quantity.Abs().Float64()
	dev := math.Abs(qty - mean)

	if std == 0 {
		if dev == 0 {
			res.Reason = "dentro del patrón reciente del producto"
			return res
		}
		// Historial sin variación: cualquier desviación es atípica por definición.
		res.Score = AnomalyThreshold + dev/math.Max(mean, 1)
		res.IsAnomalous = true
		res.Reason = fmt.Sprintf("cantidad %.2f rompe un historial constante de %.2f unidades", qty, mean)
		return res
	}

	res.Score = dev / std
	if res.Score > AnomalyThreshold {
		res.IsAnomalous = true
		res.Reason = fmt.Sprintf("cantidad %.2f se desvía %.1f desviaciones estándar de la media reciente (%.2f)", qty, res.Score, mean)
		return res
	}
	res.Reason = "dentro del patrón reciente del producto"
	return res
}

// ScoreAll puntúa cada movimiento contra el historial del resto. Pensada para
// el recálculo reactivo del store tras cada mutación.
func ScoreAll(movements []entity.Movement) []entity.AnomalyResult {
	results := make([]entity.AnomalyResult, 0, len(movements))
	for _, m := range movements {
		results = append(results, ScoreMovement(m, movements))
	}
	return results
}

// baseline devuelve las cantidades absolutas de los últimos maxBaseline
// movimientos del mismo producto estrictamente anteriores al candidato.
func baseline(mov entity.Movement, history []entity.Movement) []float64 {
	type obs struct {
		when int64
		qty  float64
	}
	var prior []obs
	for _, m := range history {
		if m.ProductID != mov.ProductID || m.ID == mov.ID {
			continue
		}
		if m.Date.After(mov.Date) {
			continue
		}
		if m.Date.Equal(mov.Date) && !m.CreatedAt.Before(mov.CreatedAt) {
			continue
		}
		q, _ := m.Quantity.Abs().Float64()
		prior = append(prior, obs{when: m.Date.UnixNano(), qty: q})
	}
	sort.Slice(prior, func(i, j int) bool { return prior[i].when < prior[j].when })
	if len(prior) > maxBaseline {
		prior = prior[len(prior)-maxBaseline:]
	}
	out := make([]float64, len(prior))
	for i, o := range prior {
		out[i] = o.qty
	}
	return out
}
