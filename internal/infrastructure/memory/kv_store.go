// Package memory implementa el almacenamiento clave-valor en memoria.
// Es el modo degradado de la sesión cuando SQLite no está disponible
// (StorageUnavailable) y el backend de los tests.
package memory

import (
	"context"
	"sync"
)

// KVStore guarda pares clave-valor en un mapa protegido por RWMutex.
// No sobrevive al proceso; el llamador ya fue advertido al degradar.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore crea el almacén en memoria.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get devuelve (valor, true, nil) si la clave existe; (nil, false, nil) si no.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Set reemplaza el valor completo de la clave.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.mu.Lock()
	s.data[key] = cp
	s.mu.Unlock()
	return nil
}

// Delete elimina la clave; una clave ausente no es error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Close no tiene recursos que liberar.
func (s *KVStore) Close() error { return nil }
