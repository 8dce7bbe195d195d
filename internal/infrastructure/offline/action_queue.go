package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
)

const queueKey = "queue:actions"

// ActionQueue es el libro mayor durable de mutaciones capturadas offline.
// La lista completa se persiste como un solo valor JSON bajo queue:actions;
// el orden del slice es el orden de encolado y por tanto el orden de replay.
type ActionQueue struct {
	mu sync.Mutex
	kv repository.KVStore
}

// NewActionQueue construye la cola sobre un KVStore.
func NewActionQueue(kv repository.KVStore) *ActionQueue {
	return &ActionQueue{kv: kv}
}

// Enqueue agrega la acción al final. Asigna ID y EnqueuedAt si faltan.
func (q *ActionQueue) Enqueue(ctx context.Context, action entity.PendingAction) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.load(ctx)
	if err != nil {
		return "", err
	}
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.EnqueuedAt.IsZero() {
		action.EnqueuedAt = time.Now().UTC()
	}
	actions = append(actions, action)
	if err := q.save(ctx, actions); err != nil {
		return "", err
	}
	return action.ID, nil
}

// List devuelve las acciones en orden de encolado.
func (q *ActionQueue) List(ctx context.Context) ([]entity.PendingAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Remove elimina por ID preservando el orden del resto. Idempotente.
func (q *ActionQueue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.load(ctx)
	if err != nil {
		return err
	}
	kept := actions[:0]
	found := false
	for _, a := range actions {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return nil
	}
	return q.save(ctx, kept)
}

// BumpAttempts incrementa y persiste el contador de intentos de la acción.
func (q *ActionQueue) BumpAttempts(ctx context.Context, id string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	for i := range actions {
		if actions[i].ID == id {
			actions[i].Attempts++
			if err := q.save(ctx, actions); err != nil {
				return 0, err
			}
			return actions[i].Attempts, nil
		}
	}
	return 0, fmt.Errorf("%w: acción %s", domain.ErrNotFound, id)
}

func (q *ActionQueue) load(ctx context.Context) ([]entity.PendingAction, error) {
	raw, ok, err := q.kv.Get(ctx, queueKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var actions []entity.PendingAction
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("cola de acciones corrupta: %w", err)
	}
	return actions, nil
}

func (q *ActionQueue) save(ctx context.Context, actions []entity.PendingAction) error {
	raw, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("serializar cola: %w", err)
	}
	return q.kv.Set(ctx, queueKey, raw)
}
