package offline_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/offline"
)

// Todos los campos decimales van inicializados: el cero implícito de
// decimal.Decimal no sobrevive intacto un viaje por JSON.
func productosDemo() []entity.Product {
	return []entity.Product{
		{
			ID: "p1", SKU: "SKU-1", Name: "Tornillo",
			Price: decimal.NewFromInt(120), Cost: decimal.NewFromInt(80),
			Stock: decimal.NewFromInt(100), ReorderPoint: decimal.NewFromInt(20),
			SyncStatus: entity.SyncStatusConfirmed,
		},
		{
			ID: "p2", SKU: "SKU-2", Name: "Tuerca",
			Price: decimal.NewFromInt(60), Cost: decimal.NewFromInt(35),
			Stock: decimal.NewFromInt(50), ReorderPoint: decimal.NewFromInt(10),
			SyncStatus: entity.SyncStatusConfirmed,
		},
	}
}

// Round-trip: save(colección, X); load(colección) == X.
func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := offline.NewSnapshotCache(memory.NewKVStore())
	quiero := productosDemo()

	require.NoError(t, cache.Save(ctx, repository.CollectionProducts, quiero))

	var tengo []entity.Product
	ok, err := cache.Load(ctx, repository.CollectionProducts, &tengo)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, quiero, tengo)
}

// La ausencia de snapshot no es error: devuelve ok=false para que el caller
// caiga al fetch de red.
func TestSnapshotCache_ColeccionAusenteNoEsError(t *testing.T) {
	ctx := context.Background()
	cache := offline.NewSnapshotCache(memory.NewKVStore())

	var tengo []entity.Product
	ok, err := cache.Load(ctx, repository.CollectionProducts, &tengo)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tengo)
}

// Save reemplaza el snapshot entero, no lo mezcla con el anterior.
func TestSnapshotCache_SaveReemplazaCompleto(t *testing.T) {
	ctx := context.Background()
	cache := offline.NewSnapshotCache(memory.NewKVStore())

	require.NoError(t, cache.Save(ctx, repository.CollectionProducts, productosDemo()))
	menos := productosDemo()[:1]
	require.NoError(t, cache.Save(ctx, repository.CollectionProducts, menos))

	var tengo []entity.Product
	ok, err := cache.Load(ctx, repository.CollectionProducts, &tengo)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, menos, tengo)
}

// Las colecciones son independientes entre sí.
func TestSnapshotCache_ColeccionesIndependientes(t *testing.T) {
	ctx := context.Background()
	cache := offline.NewSnapshotCache(memory.NewKVStore())

	require.NoError(t, cache.Save(ctx, repository.CollectionProducts, productosDemo()))

	var movs []entity.Movement
	ok, err := cache.Load(ctx, repository.CollectionMovements, &movs)
	require.NoError(t, err)
	assert.False(t, ok, "guardar productos no crea snapshot de movimientos")
}

// MarkSynced / LastSyncedAt persisten la marca con precisión razonable.
func TestSnapshotCache_MarcaDeSincronizacion(t *testing.T) {
	ctx := context.Background()
	cache := offline.NewSnapshotCache(memory.NewKVStore())

	_, ok, err := cache.LastSyncedAt(ctx)
	require.NoError(t, err)
	require.False(t, ok, "sin sincronizar no hay marca")

	quiero := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, cache.MarkSynced(ctx, quiero))

	tengo, ok, err := cache.LastSyncedAt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, quiero.Equal(tengo))
}
