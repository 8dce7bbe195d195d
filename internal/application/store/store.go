// Package store implementa el estado observable de la aplicación: compone el
// caché local, la cola de acciones pendientes, el gateway al backend y el
// motor predictivo en una única fuente de verdad en memoria.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/application/ports"
	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/analytics"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
	"github.com/jhoicas/Inventario-offline/pkg/logger"
)

// Status es la vista observable del estado del store para el dashboard.
type Status struct {
	SyncState    string
	LastError    string
	PendingCount int
	LastSyncedAt *time.Time
	Version      uint64
}

// Store es el mutador lógico único: cada mutación completa (validar,
// despachar, aplicar) se serializa bajo actionMu, eliminando lost updates del
// lado cliente. El estado en memoria va bajo mu, que se suelta durante la
// llamada de red: los lectores nunca esperan al backend, solo la siguiente
// mutación en la fila.
type Store struct {
	log     *logger.Logger
	gateway ports.BackendGateway
	monitor ports.ConnectivityMonitor
	cache   repository.SnapshotCache
	queue   repository.ActionQueue

	horizonDays int
	now         func() time.Time

	// actionMu ordena las mutaciones de punta a punta; se toma antes que mu y
	// se retiene durante el despacho al backend.
	actionMu sync.Mutex

	mu           sync.Mutex
	products     []entity.Product
	movements    []entity.Movement
	predictions  []entity.StockPrediction
	anomalies    []entity.AnomalyResult
	syncState    string
	lastError    string
	lastSyncedAt *time.Time
	pendingCount int
	version      uint64
	changed      chan struct{}
}

// Deps dependencias del store.
type Deps struct {
	Log         *logger.Logger
	Gateway     ports.BackendGateway
	Monitor     ports.ConnectivityMonitor
	Cache       repository.SnapshotCache
	Queue       repository.ActionQueue
	HorizonDays int
	Now         func() time.Time // inyectable en tests; nil = time.Now
}

// New construye el store. Arranca en estado offline hasta el primer ciclo.
func New(d Deps) *Store {
	if d.HorizonDays <= 0 {
		d.HorizonDays = analytics.DefaultHorizonDays
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Store{
		log:         d.Log,
		gateway:     d.Gateway,
		monitor:     d.Monitor,
		cache:       d.Cache,
		queue:       d.Queue,
		horizonDays: d.HorizonDays,
		now:         d.Now,
		syncState:   domain.SyncStateOffline,
		changed:     make(chan struct{}),
	}
}

// Bootstrap carga el último snapshot bueno conocido desde el caché local y
// recalcula analítica. Se llama una vez al arrancar, antes del primer ciclo.
func (s *Store) Bootstrap(ctx context.Context) error {
	var products []entity.Product
	if _, err := s.cache.Load(ctx, repository.CollectionProducts, &products); err != nil {
		return err
	}
	var movements []entity.Movement
	if _, err := s.cache.Load(ctx, repository.CollectionMovements, &movements); err != nil {
		return err
	}
	syncedAt, ok, err := s.cache.LastSyncedAt(ctx)
	if err != nil {
		return err
	}
	pending, err := s.queue.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.movements = movements
	if ok {
		t := syncedAt
		s.lastSyncedAt = &t
	}
	s.pendingCount = len(pending)
	s.recomputeLocked()
	s.bumpLocked()
	return nil
}

// Status devuelve la vista observable actual.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Store) statusLocked() Status {
	st := Status{
		SyncState:    s.syncState,
		LastError:    s.lastError,
		PendingCount: s.pendingCount,
		Version:      s.version,
	}
	if s.lastSyncedAt != nil {
		t := *s.lastSyncedAt
		st.LastSyncedAt = &t
	}
	return st
}

// WaitForChange bloquea hasta que la versión del store supere since o el
// contexto venza. Soporta el long-poll de cambios del dashboard.
func (s *Store) WaitForChange(ctx context.Context, since uint64) (Status, error) {
	for {
		s.mu.Lock()
		if s.version > since {
			st := s.statusLocked()
			s.mu.Unlock()
			return st, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return s.Status(), ctx.Err()
		case <-ch:
		}
	}
}

// Products devuelve una copia de la colección de productos.
func (s *Store) Products() []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Movements devuelve una copia del historial de movimientos.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// Predictions devuelve las proyecciones de demanda vigentes.
func (s *Store) Predictions() []entity.StockPrediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockPrediction, len(s.predictions))
	copy(out, s.predictions)
	return out
}

// Anomalies devuelve los resultados de detección de anomalías vigentes.
func (s *Store) Anomalies() []entity.AnomalyResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.AnomalyResult, len(s.anomalies))
	copy(out, s.anomalies)
	return out
}

// recomputeLocked recalcula predicciones y anomalías desde las colecciones
// actuales. Debe llamarse con el lock tomado tras cada mutación exitosa.
func (s *Store) recomputeLocked() {
	now := s.now()
	preds := make([]entity.StockPrediction, 0, len(s.products))
	for _, p := range s.products {
		preds = append(preds, analytics.PredictDemand(p.ID, s.movements, s.horizonDays, now))
	}
	s.predictions = preds
	s.anomalies = analytics.ScoreAll(s.movements)
}

// bumpLocked avanza la versión y despierta a los long-polls.
func (s *Store) bumpLocked() {
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

// persistLocked escribe ambos snapshots al caché local. Un fallo de
// almacenamiento degrada a memoria para la sesión: se advierte y se sigue.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.cache.Save(ctx, repository.CollectionProducts, s.products); err != nil {
		s.log.Warn().Err(err).Msg("persistir snapshot de productos; la sesión sigue en memoria")
	}
	if err := s.cache.Save(ctx, repository.CollectionMovements, s.movements); err != nil {
		s.log.Warn().Err(err).Msg("persistir snapshot de movimientos; la sesión sigue en memoria")
	}
}

// findProductLocked devuelve el índice del producto o -1.
func (s *Store) findProductLocked(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
