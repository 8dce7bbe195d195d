// Package sqlite implementa el almacenamiento durable clave-valor sobre SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jhoicas/Inventario-offline/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// KVStore persiste pares clave-valor en un archivo SQLite local.
// Cada Set es un UPSERT en su propia transacción implícita: el reemplazo del
// snapshot de una colección es atómico por clave.
type KVStore struct {
	sqlDB *sql.DB
}

// Open abre (o crea) el archivo SQLite y asegura el esquema.
// WAL y busy_timeout porque coexisten el ciclo de sync y los handlers HTTP;
// el driver modernc solo entiende la forma _pragma=nombre(valor).
func Open(path string) (*KVStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: ruta de almacenamiento vacía", domain.ErrStorageUnavailable)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: abrir sqlite: %v", domain.ErrStorageUnavailable, err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", domain.ErrStorageUnavailable, err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: crear esquema: %v", domain.ErrStorageUnavailable, err)
	}
	return &KVStore{sqlDB: sqlDB}, nil
}

// Get devuelve (valor, true, nil) si la clave existe; (nil, false, nil) si no.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: leer %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return value, true, nil
}

// Set reemplaza el valor completo de la clave.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: escribir %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Delete elimina la clave; una clave ausente no es error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: borrar %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Close cierra el archivo SQLite.
func (s *KVStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
