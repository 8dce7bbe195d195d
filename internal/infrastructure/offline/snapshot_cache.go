// Package offline implementa el caché de snapshots y la cola de acciones
// pendientes sobre el puerto KVStore.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
)

// Claves fijas con espacio de nombres en el KVStore.
const (
	cacheKeyPrefix = "cache:"
	lastSyncKey    = "sync:last"
)

// SnapshotCache guarda el último snapshot bueno conocido de cada colección.
// Cada colección es independiente: no hay transacción entre colecciones.
type SnapshotCache struct {
	kv repository.KVStore
}

// NewSnapshotCache construye el caché sobre un KVStore.
func NewSnapshotCache(kv repository.KVStore) *SnapshotCache {
	return &SnapshotCache{kv: kv}
}

// Save serializa y reemplaza el snapshot completo de la colección.
// El JSON se arma antes de tocar el almacén: o se escribe entero o no se
// escribe nada, nunca un snapshot parcial.
func (c *SnapshotCache) Save(ctx context.Context, collection string, entities any) error {
	raw, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("serializar snapshot %q: %w", collection, err)
	}
	return c.kv.Set(ctx, cacheKeyPrefix+collection, raw)
}

// Load deserializa el snapshot en dest; (false, nil) si la colección nunca se sincronizó.
func (c *SnapshotCache) Load(ctx context.Context, collection string, dest any) (bool, error) {
	raw, ok, err := c.kv.Get(ctx, cacheKeyPrefix+collection)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("deserializar snapshot %q: %w", collection, err)
	}
	return true, nil
}

// MarkSynced registra el instante del último ciclo de fetch exitoso.
func (c *SnapshotCache) MarkSynced(ctx context.Context, t time.Time) error {
	raw, err := t.UTC().MarshalText()
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, lastSyncKey, raw)
}

// LastSyncedAt devuelve (cero, false, nil) si nunca hubo sincronización.
func (c *SnapshotCache) LastSyncedAt(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := c.kv.Get(ctx, lastSyncKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	var t time.Time
	if err := t.UnmarshalText(raw); err != nil {
		return time.Time{}, false, fmt.Errorf("marca de sincronización corrupta: %w", err)
	}
	return t, true, nil
}
