package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
)

// deletePayload cuerpo de la mutación delete_product.
type deletePayload struct {
	ID string `json:"id"`
}

// CreateProduct crea un producto: directo contra el backend si hay
// conectividad; aplicación optimista + encolado si no (o si la llamada falla:
// la intención nunca se pierde).
func (s *Store) CreateProduct(ctx context.Context, actor string, in dto.CreateProductRequest) (entity.Product, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return entity.Product{}, domain.ErrInvalidInput
	}
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].SKU == in.SKU {
			s.mu.Unlock()
			return entity.Product{}, domain.ErrDuplicate
		}
	}
	s.mu.Unlock()

	now := s.now().UTC()
	product := entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Cost:         in.Cost,
		Stock:        in.Stock,
		ReorderPoint: in.ReorderPoint,
		UnitMeasure:  in.UnitMeasure,
		CreatedAt:    now,
		UpdatedAt:    now,
		SyncStatus:   entity.SyncStatusConfirmed,
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return entity.Product{}, err
	}

	confirmed, err := s.mutate(ctx, actor, entity.ActionCreateProduct, payload)
	if err != nil {
		return entity.Product{}, err
	}
	return s.settleProduct(ctx, confirmed, product)
}

// UpdateProduct actualiza campos de un producto con semántica last-writer-wins
// sobre la copia local única.
func (s *Store) UpdateProduct(ctx context.Context, actor, id string, in dto.UpdateProductRequest) (entity.Product, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	s.mu.Lock()
	idx := s.findProductLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return entity.Product{}, domain.ErrNotFound
	}
	updated := s.products[idx]
	s.mu.Unlock()

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return entity.Product{}, domain.ErrInvalidInput
		}
		updated.Name = *in.Name
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Price != nil {
		updated.Price = *in.Price
	}
	if in.ReorderPoint != nil {
		updated.ReorderPoint = *in.ReorderPoint
	}
	if in.UnitMeasure != nil {
		updated.UnitMeasure = *in.UnitMeasure
	}
	updated.UpdatedAt = s.now().UTC()
	updated.SyncStatus = entity.SyncStatusConfirmed
	updated.PendingActionID = ""

	payload, err := json.Marshal(updated)
	if err != nil {
		return entity.Product{}, err
	}
	confirmed, err := s.mutate(ctx, actor, entity.ActionUpdateProduct, payload)
	if err != nil {
		return entity.Product{}, err
	}
	return s.settleProduct(ctx, confirmed, updated)
}

// DeleteProduct elimina un producto.
func (s *Store) DeleteProduct(ctx context.Context, actor, id string) error {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	s.mu.Lock()
	idx := s.findProductLocked(id)
	s.mu.Unlock()
	if idx < 0 {
		return domain.ErrNotFound
	}
	payload, err := json.Marshal(deletePayload{ID: id})
	if err != nil {
		return err
	}
	if _, err := s.mutate(ctx, actor, entity.ActionDeleteProduct, payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findProductLocked(id); i >= 0 {
		s.products = append(s.products[:i], s.products[i+1:]...)
	}
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()
	return nil
}

// CreateMovement registra un movimiento de inventario y ajusta la existencia
// local del producto con la misma semántica que una escritura confirmada.
func (s *Store) CreateMovement(ctx context.Context, actor string, in dto.CreateMovementRequest) (entity.Movement, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	qty, err := s.signedQuantity(in)
	if err != nil {
		return entity.Movement{}, err
	}

	now := s.now().UTC()
	movement := entity.Movement{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		Type:       in.Type,
		Quantity:   qty,
		Reference:  in.Reference,
		Notes:      in.Notes,
		Date:       now,
		CreatedAt:  now,
		CreatedBy:  actor,
		SyncStatus: entity.SyncStatusConfirmed,
	}
	payload, err := json.Marshal(movement)
	if err != nil {
		return entity.Movement{}, err
	}

	confirmed, err := s.mutate(ctx, actor, entity.ActionCreateMovement, payload)
	if err != nil {
		return entity.Movement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if confirmed.result != nil {
		var srv entity.Movement
		if err := json.Unmarshal(confirmed.result, &srv); err == nil && srv.ID != "" {
			movement = srv
		}
	}
	movement.SyncStatus = confirmed.status()
	movement.PendingActionID = confirmed.actionID
	s.movements = append(s.movements, movement)
	if i := s.findProductLocked(movement.ProductID); i >= 0 {
		s.products[i].Stock = s.products[i].Stock.Add(movement.Quantity)
		s.products[i].UpdatedAt = now
	}
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()
	return movement, nil
}

// signedQuantity valida el movimiento y devuelve la cantidad con signo:
// positiva IN/ajuste+, negativa OUT/ajuste-.
func (s *Store) signedQuantity(in dto.CreateMovementRequest) (decimal.Decimal, error) {
	if in.ProductID == "" || in.Quantity.IsZero() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	s.mu.Lock()
	idx := s.findProductLocked(in.ProductID)
	var stock decimal.Decimal
	if idx >= 0 {
		stock = s.products[idx].Stock
	}
	s.mu.Unlock()
	if idx < 0 {
		return decimal.Zero, domain.ErrNotFound
	}

	switch in.Type {
	case entity.MovementTypeIN:
		if in.Quantity.LessThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return in.Quantity, nil
	case entity.MovementTypeOUT:
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		if stock.LessThan(in.Quantity) {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return in.Quantity.Neg(), nil
	case entity.MovementTypeADJUSTMENT:
		if in.Quantity.LessThan(decimal.Zero) && stock.LessThan(in.Quantity.Neg()) {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return in.Quantity, nil
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}
}

// mutationOutcome resultado de despachar una mutación.
type mutationOutcome struct {
	result   json.RawMessage // respuesta del backend; nil en la ruta offline
	actionID string          // ID de la acción encolada; vacío si fue confirmada en línea
}

func (o mutationOutcome) status() string {
	if o.actionID != "" {
		return entity.SyncStatusPending
	}
	return entity.SyncStatusConfirmed
}

// mutate es el despacho común: intento en línea si la conectividad es buena y,
// ante cualquier fallo o desconexión, encolado con marca de actor. Nunca
// descarta la intención del usuario.
func (s *Store) mutate(ctx context.Context, actor, kind string, payload json.RawMessage) (mutationOutcome, error) {
	if s.monitor.Online() {
		result, err := s.gateway.ApplyMutation(ctx, kind, payload)
		if err == nil {
			return mutationOutcome{result: result}, nil
		}
		s.log.Warn().Err(err).Str("kind", kind).Msg("mutación en línea falló; cae a la ruta offline")
	}

	id, err := s.queue.Enqueue(ctx, entity.PendingAction{
		Kind:       kind,
		Payload:    payload,
		Actor:      actor,
		EnqueuedAt: s.now().UTC(),
	})
	if err != nil {
		return mutationOutcome{}, fmt.Errorf("encolar %s: %w", kind, err)
	}

	s.mu.Lock()
	s.pendingCount++
	s.mu.Unlock()
	return mutationOutcome{actionID: id}, nil
}

// settleProduct incorpora el producto resultante (confirmado o pendiente) a la
// colección y dispara persistencia y recálculo.
func (s *Store) settleProduct(ctx context.Context, out mutationOutcome, local entity.Product) (entity.Product, error) {
	if out.result != nil {
		var srv entity.Product
		if err := json.Unmarshal(out.result, &srv); err == nil && srv.ID != "" {
			local = srv
		}
	}
	local.SyncStatus = out.status()
	local.PendingActionID = out.actionID

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findProductLocked(local.ID); i >= 0 {
		s.products[i] = local
	} else {
		s.products = append(s.products, local)
	}
	s.persistLocked(ctx)
	s.recomputeLocked()
	s.bumpLocked()
	return local, nil
}

// applyActionLocked re-aplica una acción pendiente sobre las colecciones (se
// usa en la ruta offline y en el rebase tras un fetch). Lock tomado.
func (s *Store) applyActionLocked(action entity.PendingAction) {
	switch action.Kind {
	case entity.ActionCreateProduct, entity.ActionUpdateProduct:
		var p entity.Product
		if err := json.Unmarshal(action.Payload, &p); err != nil || p.ID == "" {
			return
		}
		p.SyncStatus = entity.SyncStatusPending
		p.PendingActionID = action.ID
		if i := s.findProductLocked(p.ID); i >= 0 {
			s.products[i] = p
		} else {
			s.products = append(s.products, p)
		}
	case entity.ActionDeleteProduct:
		var dp deletePayload
		if err := json.Unmarshal(action.Payload, &dp); err != nil {
			return
		}
		if i := s.findProductLocked(dp.ID); i >= 0 {
			s.products = append(s.products[:i], s.products[i+1:]...)
		}
	case entity.ActionCreateMovement:
		var m entity.Movement
		if err := json.Unmarshal(action.Payload, &m); err != nil || m.ID == "" {
			return
		}
		for i := range s.movements {
			if s.movements[i].ID == m.ID {
				return
			}
		}
		m.SyncStatus = entity.SyncStatusPending
		m.PendingActionID = action.ID
		s.movements = append(s.movements, m)
		if i := s.findProductLocked(m.ProductID); i >= 0 {
			s.products[i].Stock = s.products[i].Stock.Add(m.Quantity)
		}
	}
}

// revertActionLocked deshace el efecto optimista de una acción perdida, en la
// medida en que es reversible; el siguiente fetch restaura la verdad del servidor.
func (s *Store) revertActionLocked(action entity.PendingAction) {
	switch action.Kind {
	case entity.ActionCreateProduct:
		var p entity.Product
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return
		}
		if i := s.findProductLocked(p.ID); i >= 0 && s.products[i].PendingActionID == action.ID {
			s.products = append(s.products[:i], s.products[i+1:]...)
		}
	case entity.ActionUpdateProduct, entity.ActionDeleteProduct:
		// No hay copia previa local que restaurar; se limpia la marca pendiente
		// y el siguiente fetch reconcilia.
		for i := range s.products {
			if s.products[i].PendingActionID == action.ID {
				s.products[i].SyncStatus = entity.SyncStatusConfirmed
				s.products[i].PendingActionID = ""
			}
		}
	case entity.ActionCreateMovement:
		var m entity.Movement
		if err := json.Unmarshal(action.Payload, &m); err != nil {
			return
		}
		for i := range s.movements {
			if s.movements[i].ID == m.ID && s.movements[i].PendingActionID == action.ID {
				s.movements = append(s.movements[:i], s.movements[i+1:]...)
				if j := s.findProductLocked(m.ProductID); j >= 0 {
					s.products[j].Stock = s.products[j].Stock.Sub(m.Quantity)
				}
				break
			}
		}
	}
}
