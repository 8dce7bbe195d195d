package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	"github.com/jhoicas/Inventario-offline/internal/application/sync"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
)

// SyncHandler expone el estado del coordinador, el disparo manual de ciclos y
// el long-poll de cambios que usa el dashboard para re-renderizar.
type SyncHandler struct {
	store       *store.Store
	coordinator *sync.Coordinator
	queue       repository.ActionQueue
}

// NewSyncHandler construye el handler.
func NewSyncHandler(s *store.Store, c *sync.Coordinator, q repository.ActionQueue) *SyncHandler {
	return &SyncHandler{store: s, coordinator: c, queue: q}
}

// Status devuelve el estado observable del store, incluida la cola pendiente.
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	st := h.store.Status()
	resp := dto.SyncStatusResponse{
		SyncState:    st.SyncState,
		LastError:    st.LastError,
		PendingCount: st.PendingCount,
		LastSyncedAt: st.LastSyncedAt,
		Version:      st.Version,
	}
	if pending, err := h.queue.List(c.Context()); err == nil {
		resp.Pending = pending
	}
	return c.JSON(resp)
}

// Refresh solicita un ciclo de sincronización manual; responde de inmediato.
func (h *SyncHandler) Refresh(c *fiber.Ctx) error {
	h.coordinator.Refresh()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "ciclo solicitado"})
}

// Changes bloquea hasta que la versión del store supere ?since= o venza
// ?timeout_seconds= (por defecto 25 s), y devuelve el estado actual.
func (h *SyncHandler) Changes(c *fiber.Ctx) error {
	// Un since negativo se trata como 0: convertirlo directo a uint64 lo
	// envolvería en un valor enorme que ninguna versión alcanza.
	since := uint64(0)
	if v := c.QueryInt("since", 0); v > 0 {
		since = uint64(v)
	}
	timeout := c.QueryInt("timeout_seconds", 25)
	if timeout <= 0 || timeout > 60 {
		timeout = 25
	}

	ctx, cancel := context.WithTimeout(c.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	st, err := h.store.WaitForChange(ctx, since)
	changed := err == nil
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"changed": changed,
		"status": dto.SyncStatusResponse{
			SyncState:    st.SyncState,
			LastError:    st.LastError,
			PendingCount: st.PendingCount,
			LastSyncedAt: st.LastSyncedAt,
			Version:      st.Version,
		},
	})
}
