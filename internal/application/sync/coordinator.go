// Package sync orquesta el ciclo de sincronización: fetch de colecciones,
// persistencia del snapshot y drenado estrictamente ordenado de la cola de
// acciones pendientes.
package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/application/ports"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
	"github.com/jhoicas/Inventario-offline/pkg/logger"
)

// Coordinator es la máquina de estados Offline -> Syncing -> Idle.
// Un ciclo puede ser supersedido por un disparo más nuevo: el ciclo viejo se
// cancela y su resultado en vuelo se descarta (last-cycle-wins).
type Coordinator struct {
	store   *store.Store
	cache   repository.SnapshotCache
	queue   repository.ActionQueue
	gateway ports.BackendGateway
	monitor ports.ConnectivityMonitor
	log     *logger.Logger

	interval    time.Duration
	maxAttempts int
	now         func() time.Time

	trigger chan struct{}

	mu          stdsync.Mutex
	cycleCancel context.CancelFunc
}

// Deps dependencias del coordinador.
type Deps struct {
	Store       *store.Store
	Cache       repository.SnapshotCache
	Queue       repository.ActionQueue
	Gateway     ports.BackendGateway
	Monitor     ports.ConnectivityMonitor
	Log         *logger.Logger
	Interval    time.Duration
	MaxAttempts int              // intentos de una acción antes de declararla perdida
	Now         func() time.Time // inyectable en tests; nil = time.Now
}

// New construye el coordinador.
func New(d Deps) *Coordinator {
	if d.Interval <= 0 {
		d.Interval = 30 * time.Second
	}
	if d.MaxAttempts <= 0 {
		d.MaxAttempts = 5
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Coordinator{
		store:       d.Store,
		cache:       d.Cache,
		queue:       d.Queue,
		gateway:     d.Gateway,
		monitor:     d.Monitor,
		log:         d.Log,
		interval:    d.Interval,
		maxAttempts: d.MaxAttempts,
		now:         d.Now,
		trigger:     make(chan struct{}, 1),
	}
}

// Refresh solicita un ciclo manual sin bloquear. Si ya hay un disparo en
// espera no acumula otro.
func (c *Coordinator) Refresh() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Run atiende disparos (timer, refresh manual, reconexión) hasta que el
// contexto se cancele. Bloqueante: lanzar en goroutine.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Primer ciclo al arrancar; si no hay red, el ciclo lo reporta y queda Offline.
	c.startCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.startCycle(ctx)
		case <-c.trigger:
			c.startCycle(ctx)
		case online := <-c.monitor.Changes():
			if online {
				c.startCycle(ctx)
			} else {
				c.store.SetSyncState(domain.SyncStateOffline, domain.ErrNetworkUnreachable)
			}
		}
	}
}

// startCycle cancela el ciclo en vuelo (si lo hay) y lanza uno nuevo.
func (c *Coordinator) startCycle(ctx context.Context) {
	c.mu.Lock()
	if c.cycleCancel != nil {
		c.cycleCancel()
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	c.cycleCancel = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.RunCycle(cycleCtx)
	}()
}

// RunCycle ejecuta un ciclo completo de forma síncrona: fetch de todas las
// colecciones y, si todas llegan, drenado de la cola. Exportado para que los
// tests (y el arranque) puedan ejecutar ciclos deterministas.
func (c *Coordinator) RunCycle(ctx context.Context) {
	if ctx.Err() != nil {
		// Supersedido antes de empezar: no tocar el estado observable.
		return
	}
	c.store.SetSyncState(domain.SyncStateSyncing, nil)

	products, movements, err := c.fetchAll(ctx)
	if ctx.Err() != nil {
		// Supersedido: un ciclo más nuevo es dueño del estado; descartar.
		return
	}
	if err != nil {
		// Fetch fallido: el estado en memoria y el caché quedan como estaban.
		c.log.Warn().Err(err).Msg("fetch de colecciones falló; se conserva el último snapshot")
		c.store.SetSyncState(domain.SyncStateOffline, err)
		return
	}

	pending, qerr := c.queue.List(ctx)
	if qerr != nil {
		c.store.SetSyncState(domain.SyncStateOffline, fmt.Errorf("leer cola pendiente: %w", qerr))
		return
	}

	syncedAt := c.now().UTC()
	c.store.ReplaceCollections(ctx, products, movements, syncedAt, pending)
	if err := c.cache.MarkSynced(ctx, syncedAt); err != nil {
		c.log.Warn().Err(err).Msg("registrar marca de sincronización")
	}

	if !c.drain(ctx) {
		return
	}
	c.store.SetSyncState(domain.SyncStateIdle, nil)
}

// fetchAll descarga productos y movimientos en paralelo. El snapshot solo se
// acepta si ambas colecciones llegaron: nunca un estado parcial.
func (c *Coordinator) fetchAll(ctx context.Context) ([]entity.Product, []entity.Movement, error) {
	var (
		wg        stdsync.WaitGroup
		products  []entity.Product
		movements []entity.Movement
		prodErr   error
		movErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		products, prodErr = c.gateway.FetchProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		movements, movErr = c.gateway.FetchMovements(ctx)
	}()
	wg.Wait()

	if prodErr != nil {
		return nil, nil, fmt.Errorf("fetch productos: %w", prodErr)
	}
	if movErr != nil {
		return nil, nil, fmt.Errorf("fetch movimientos: %w", movErr)
	}
	return products, movements, nil
}

// drain reproduce la cola en orden estricto de encolado, una acción en vuelo a
// la vez. Un rechazo permanente (o una acción que agota sus intentos) se
// elimina y reporta sin bloquear al resto; un fallo reintentable detiene el
// drenado donde está para preservar el orden causal. Devuelve true si la cola
// quedó vacía.
func (c *Coordinator) drain(ctx context.Context) bool {
	actions, err := c.queue.List(ctx)
	if err != nil {
		c.store.SetSyncState(domain.SyncStateOffline, fmt.Errorf("leer cola pendiente: %w", err))
		return false
	}

	for _, action := range actions {
		if ctx.Err() != nil {
			return false
		}

		result, err := c.gateway.ApplyMutation(ctx, action.Kind, action.Payload)
		if err == nil {
			if rerr := c.queue.Remove(ctx, action.ID); rerr != nil {
				c.log.Warn().Err(rerr).Str("action_id", action.ID).Msg("eliminar acción confirmada de la cola")
			}
			c.store.ConfirmAction(ctx, action, result)
			c.log.Info().Str("action_id", action.ID).Str("kind", action.Kind).Msg("acción pendiente confirmada")
			continue
		}

		if domain.IsPermanent(err) {
			// La única excepción al bloqueo en orden: un rechazo definitivo no
			// puede resolverse esperando; se elimina, se reporta y se sigue.
			_ = c.queue.Remove(ctx, action.ID)
			c.store.ReportLostAction(ctx, action, err.Error())
			continue
		}

		attempts, berr := c.queue.BumpAttempts(ctx, action.ID)
		if berr == nil && attempts >= c.maxAttempts {
			_ = c.queue.Remove(ctx, action.ID)
			c.store.ReportLostAction(ctx, action,
				fmt.Sprintf("agotó %d intentos; último error: %v", attempts, err))
			continue
		}

		// Reintentable: queda encolada para el próximo ciclo, junto con todo
		// lo que venía detrás.
		c.store.SetSyncState(domain.SyncStateOffline, err)
		return false
	}
	return true
}
