package entity

import (
	"encoding/json"
	"time"
)

// Tipos de mutación que se pueden encolar mientras no hay conectividad.
const (
	ActionCreateProduct  = "create_product"
	ActionUpdateProduct  = "update_product"
	ActionDeleteProduct  = "delete_product"
	ActionCreateMovement = "create_movement"
)

// PendingAction es una mutación capturada offline, pendiente de replay contra
// el backend. Inmutable una vez encolada (salvo el contador de intentos):
// se destruye al confirmarse o al fallar de forma permanente, nunca se pierde
// en silencio.
type PendingAction struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"` // cuerpo opaco según Kind
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Actor      string          `json:"actor"`
	Attempts   int             `json:"attempts"` // ciclos que ya la intentaron (errores ambiguos)
}
