package repository

import (
	"context"
	"time"
)

// Nombres de las colecciones cacheadas localmente.
const (
	CollectionProducts  = "products"
	CollectionMovements = "movements"
)

// SnapshotCache define el puerto del caché local de snapshots (DIP).
// Un snapshot es la copia completa y consistente de una colección en un punto
// del tiempo: Save la reemplaza entera o falla sin mutación parcial.
type SnapshotCache interface {
	// Save serializa y reemplaza el snapshot de la colección.
	Save(ctx context.Context, collection string, entities any) error
	// Load deserializa el snapshot en dest. Devuelve (false, nil) si nunca se
	// sincronizó esa colección; la ausencia no es error.
	Load(ctx context.Context, collection string, dest any) (bool, error)
	// MarkSynced registra el instante del último ciclo de fetch exitoso.
	MarkSynced(ctx context.Context, t time.Time) error
	// LastSyncedAt devuelve (cero, false, nil) si nunca hubo sincronización.
	LastSyncedAt(ctx context.Context) (time.Time, bool, error)
}
