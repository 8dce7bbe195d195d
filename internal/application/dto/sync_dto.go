package dto

import (
	"time"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// SyncStatusResponse estado observable del store para el dashboard.
type SyncStatusResponse struct {
	SyncState    string                 `json:"sync_state"` // offline, syncing, idle
	LastError    string                 `json:"last_error,omitempty"`
	PendingCount int                    `json:"pending_count"`
	LastSyncedAt *time.Time             `json:"last_synced_at,omitempty"`
	Version      uint64                 `json:"version"`
	Pending      []entity.PendingAction `json:"pending,omitempty"`
}

// TokenRequest intercambio de la clave de acceso del dashboard por un JWT.
type TokenRequest struct {
	AccessKey string `json:"access_key" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Actor     string `json:"actor" validate:"required"`
}

// TokenResponse token de sesión emitido.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
