package ports

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// BackendGateway define el puerto de salida hacia el servicio de datos
// autoritativo. Toda falla se reporta como *domain.BackendError con su
// clasificación reintentable/permanente; la implementación concreta usa HTTP
// y para tests se inyecta un fake.
type BackendGateway interface {
	// FetchProducts descarga la colección completa de productos.
	FetchProducts(ctx context.Context) ([]entity.Product, error)
	// FetchMovements descarga el historial de movimientos.
	FetchMovements(ctx context.Context) ([]entity.Movement, error)
	// ApplyMutation aplica una mutación (kind de entity.Action*) y devuelve la
	// entidad resultante tal como la dejó el backend.
	ApplyMutation(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error)
	// Ping comprueba alcanzabilidad; lo usa el monitor de conectividad.
	Ping(ctx context.Context) error
}
