// Package connectivity sondea la alcanzabilidad del backend y publica las
// transiciones online/offline que observa el coordinador de sincronización.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/application/ports"
	"github.com/jhoicas/Inventario-offline/pkg/logger"
)

// Monitor implementa ports.ConnectivityMonitor con un sondeo periódico de Ping.
type Monitor struct {
	gateway  ports.BackendGateway
	log      *logger.Logger
	interval time.Duration

	mu      sync.RWMutex
	online  bool
	changes chan bool
}

// NewMonitor construye el monitor; arranca asumiendo offline hasta el primer
// sondeo exitoso, de modo que el primer ciclo de sync sea explícito.
func NewMonitor(gateway ports.BackendGateway, log *logger.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		gateway:  gateway,
		log:      log,
		interval: interval,
		changes:  make(chan bool, 8),
	}
}

// Online devuelve el último estado conocido.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Changes emite el nuevo estado en cada transición.
func (m *Monitor) Changes() <-chan bool {
	return m.changes
}

// Run sondea hasta que el contexto se cancele. Bloqueante: lanzar en goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.gateway.Ping(probeCtx)
	now := err == nil

	m.mu.Lock()
	was := m.online
	m.online = now
	m.mu.Unlock()

	if was == now {
		return
	}
	if now {
		m.log.Info().Msg("conectividad recuperada")
	} else {
		m.log.Warn().Err(err).Msg("conectividad perdida")
	}
	// Non-blocking: si el coordinador va atrasado, la última transición basta.
	select {
	case m.changes <- now:
	default:
	}
}
