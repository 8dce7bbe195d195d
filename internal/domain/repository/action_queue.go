package repository

import (
	"context"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// ActionQueue define el puerto de la cola durable de acciones pendientes (DIP).
// Es un libro mayor ordenado y tonto: no valida semántica de payloads. El único
// contrato de orden que el coordinador usa para el replay es que List devuelve
// las acciones en su orden original de encolado.
type ActionQueue interface {
	// Enqueue agrega la acción al final; si no trae ID le asigna uno. Devuelve el ID.
	Enqueue(ctx context.Context, action entity.PendingAction) (string, error)
	// List devuelve las acciones en orden de encolado.
	List(ctx context.Context) ([]entity.PendingAction, error)
	// Remove elimina por ID; es idempotente (ID ausente = no-op).
	Remove(ctx context.Context, id string) error
	// BumpAttempts incrementa y persiste el contador de intentos de la acción,
	// devolviendo el nuevo valor. Sostiene la cota de reintentos entre reinicios.
	BumpAttempts(ctx context.Context, id string) (int, error)
}
