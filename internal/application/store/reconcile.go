package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// Métodos que invoca el coordinador de sincronización. Solo él los llama, en
// secuencia dentro de un ciclo; junto con el mutex del store eso conserva el
// invariante de mutador único.

// SetSyncState publica el estado del coordinador. Entrar a Syncing limpia la
// pizarra de errores; los errores reportados durante el ciclo (fetch fallido,
// acciones perdidas) sobreviven al estado terminal para seguir observables.
func (s *Store) SetSyncState(state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncState = state
	switch {
	case err != nil:
		s.lastError = err.Error()
	case state == domain.SyncStateSyncing:
		s.lastError = ""
	}
	s.bumpLocked()
}

// ReplaceCollections reemplaza las colecciones en memoria con el snapshot del
// servidor y re-aplica encima las acciones aún encoladas (rebase optimista),
// de modo que el dashboard no vea desaparecer trabajo sin confirmar. Persiste
// ambos snapshots y la marca de sincronización.
func (s *Store) ReplaceCollections(
	ctx context.Context,
	products []entity.Product,
	movements []entity.Movement,
	syncedAt time.Time,
	pending []entity.PendingAction,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]entity.Product, len(products))
	copy(s.products, products)
	for i := range s.products {
		s.products[i].SyncStatus = entity.SyncStatusConfirmed
		s.products[i].PendingActionID = ""
	}
	s.movements = make([]entity.Movement, len(movements))
	copy(s.movements, movements)
	for i := range s.movements {
		s.movements[i].SyncStatus = entity.SyncStatusConfirmed
		s.movements[i].PendingActionID = ""
	}

	for _, a := range pending {
		s.applyActionLocked(a)
	}

	t := syncedAt
	s.lastSyncedAt = &t
	s.pendingCount = len(pending)
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()
}

// ConfirmAction liquida una acción cuyo replay fue aceptado: localiza las
// entidades marcadas con su ID y las sustituye por la copia confirmada que
// devolvió el backend.
func (s *Store) ConfirmAction(ctx context.Context, action entity.PendingAction, result json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action.Kind {
	case entity.ActionCreateProduct, entity.ActionUpdateProduct:
		var srv entity.Product
		if err := json.Unmarshal(result, &srv); err != nil || srv.ID == "" {
			// Backend aceptó pero no devolvió la entidad: basta limpiar la marca.
			for i := range s.products {
				if s.products[i].PendingActionID == action.ID {
					s.products[i].SyncStatus = entity.SyncStatusConfirmed
					s.products[i].PendingActionID = ""
				}
			}
			break
		}
		srv.SyncStatus = entity.SyncStatusConfirmed
		srv.PendingActionID = ""
		if i := s.findProductLocked(srv.ID); i >= 0 {
			s.products[i] = srv
		} else {
			s.products = append(s.products, srv)
		}
	case entity.ActionDeleteProduct:
		var dp deletePayload
		if err := json.Unmarshal(action.Payload, &dp); err == nil {
			if i := s.findProductLocked(dp.ID); i >= 0 {
				s.products = append(s.products[:i], s.products[i+1:]...)
			}
		}
	case entity.ActionCreateMovement:
		for i := range s.movements {
			if s.movements[i].PendingActionID == action.ID {
				var srv entity.Movement
				if err := json.Unmarshal(result, &srv); err == nil && srv.ID != "" {
					srv.SyncStatus = entity.SyncStatusConfirmed
					srv.PendingActionID = ""
					s.movements[i] = srv
				} else {
					s.movements[i].SyncStatus = entity.SyncStatusConfirmed
					s.movements[i].PendingActionID = ""
				}
				break
			}
		}
	}

	if s.pendingCount > 0 {
		s.pendingCount--
	}
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()
}

// ReportLostAction registra una acción permanentemente rechazada (o agotada de
// reintentos): revierte su efecto optimista reversible y la expone como error
// observable en lugar de descartarla en silencio.
func (s *Store) ReportLostAction(ctx context.Context, action entity.PendingAction, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revertActionLocked(action)
	s.lastError = fmt.Sprintf("acción perdida %s (%s): %s", action.Kind, action.ID, reason)
	if s.pendingCount > 0 {
		s.pendingCount--
	}
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()

	s.log.Error().
		Str("action_id", action.ID).
		Str("kind", action.Kind).
		Str("actor", action.Actor).
		Str("reason", reason).
		Msg("acción pendiente perdida")
}
