package repository

import "context"

// KVStore define el puerto de almacenamiento durable clave-valor (DIP).
// Lo implementan SQLite (durable) y memoria (degradación de sesión cuando el
// almacenamiento falla, y tests). Las claves usan prefijos fijos por espacio:
// cache:<colección>, queue:actions, sync:last.
type KVStore interface {
	// Get devuelve (valor, true, nil) si la clave existe; (nil, false, nil) si no.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set reemplaza el valor completo de la clave de forma atómica.
	Set(ctx context.Context, key string, value []byte) error
	// Delete elimina la clave; eliminar una clave ausente no es error.
	Delete(ctx context.Context, key string) error
	Close() error
}
