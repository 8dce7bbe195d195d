package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorageUnavailable = errors.New("almacenamiento local no disponible")
	ErrNetworkUnreachable = errors.New("backend inalcanzable")
)

// BackendError representa un fallo del servicio de datos remoto.
// Retryable distingue fallos transitorios (red, 5xx) de rechazos definitivos (4xx).
type BackendError struct {
	Retryable bool
	Message   string
}

func (e *BackendError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("backend (reintentable): %s", e.Message)
	}
	return fmt.Sprintf("backend (permanente): %s", e.Message)
}

// IsRetryable indica si el error puede resolverse reintentando más tarde.
// Un error que no es *BackendError se considera ambiguo y por tanto reintentable
// (la cota de intentos por acción evita que bloquee la cola para siempre).
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return true
}

// IsPermanent indica un rechazo definitivo del backend.
func IsPermanent(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return !be.Retryable
	}
	return false
}
