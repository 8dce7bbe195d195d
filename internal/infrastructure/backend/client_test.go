package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/backend"
)

// Fetch feliz: decodifica la colección y adjunta la API key como Bearer.
func TestClient_FetchProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/products", r.URL.Path)
		assert.Equal(t, "Bearer clave-secreta", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","sku":"SKU-001","name":"Tornillos"}]`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "clave-secreta", 5*time.Second)
	productos, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, productos, 1)
	assert.Equal(t, "SKU-001", productos[0].SKU)
}

// ApplyMutation envía el sobre {kind, payload} y devuelve el cuerpo crudo.
func TestClient_ApplyMutation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/mutations", r.URL.Path)

		var sobre struct {
			Kind    string          `json:"kind"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sobre))
		assert.Equal(t, entity.ActionCreateProduct, sobre.Kind)
		_, _ = w.Write(sobre.Payload)
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "", 5*time.Second)
	res, err := c.ApplyMutation(context.Background(), entity.ActionCreateProduct, json.RawMessage(`{"id":"p1"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1"}`, string(res))
}

// Clasificación: 5xx y 429 son reintentables; el resto de 4xx es permanente.
func TestClient_ClasificacionDeErrores(t *testing.T) {
	casos := []struct {
		nombre       string
		status       int
		reintentable bool
	}{
		{"500 es reintentable", http.StatusInternalServerError, true},
		{"503 es reintentable", http.StatusServiceUnavailable, true},
		{"429 es reintentable", http.StatusTooManyRequests, true},
		{"400 es permanente", http.StatusBadRequest, false},
		{"404 es permanente", http.StatusNotFound, false},
		{"409 es permanente", http.StatusConflict, false},
		{"422 es permanente", http.StatusUnprocessableEntity, false},
	}
	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "detalle del fallo", caso.status)
			}))
			defer srv.Close()

			c := backend.NewClient(srv.URL, "", 5*time.Second)
			_, err := c.ApplyMutation(context.Background(), entity.ActionCreateProduct, json.RawMessage(`{}`))
			require.Error(t, err)
			assert.Equal(t, caso.reintentable, domain.IsRetryable(err))
			assert.Equal(t, !caso.reintentable, domain.IsPermanent(err))
		})
	}
}

// Un fallo de transporte (backend caído) es reintentable.
func TestClient_FalloDeTransporteEsReintentable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // cerrado a propósito

	c := backend.NewClient(srv.URL, "", time.Second)
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.False(t, domain.IsPermanent(err))
}

// Una respuesta 200 que no es JSON válido es permanente: reintentar no la arregla.
func TestClient_RespuestaInvalidaEsPermanente(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>no soy json</html>"))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "", 5*time.Second)
	_, err := c.FetchProducts(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
}

// Un contexto cancelado corta la petición en vuelo.
func TestClient_ContextoCancelado(t *testing.T) {
	bloqueo := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-bloqueo
	}))
	defer srv.Close()
	defer close(bloqueo)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := backend.NewClient(srv.URL, "", 5*time.Second)
	_, err := c.FetchProducts(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
}
