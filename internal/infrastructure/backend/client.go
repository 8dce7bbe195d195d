// Package backend implementa el gateway HTTP hacia el servicio de datos autoritativo.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Inventario-offline/internal/domain"
	"github.com/jhoicas/Inventario-offline/internal/domain/entity"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
)

// Client habla con el backend por HTTP/JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient construye el gateway con el timeout de red configurado.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchProducts descarga la colección completa de productos.
func (c *Client) FetchProducts(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if err := c.fetchCollection(ctx, repository.CollectionProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchMovements descarga el historial de movimientos.
func (c *Client) FetchMovements(ctx context.Context) ([]entity.Movement, error) {
	var out []entity.Movement
	if err := c.fetchCollection(ctx, repository.CollectionMovements, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchCollection(ctx context.Context, collection string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/collections/"+collection, nil)
	if err != nil {
		return &domain.BackendError{Retryable: false, Message: err.Error()}
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &domain.BackendError{Retryable: false, Message: fmt.Sprintf("respuesta inválida de %s: %v", collection, err)}
	}
	return nil
}

// mutationEnvelope cuerpo de POST /api/mutations.
type mutationEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ApplyMutation aplica una mutación y devuelve la entidad resultante.
func (c *Client) ApplyMutation(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error) {
	raw, err := json.Marshal(mutationEnvelope{Kind: kind, Payload: payload})
	if err != nil {
		return nil, &domain.BackendError{Retryable: false, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mutations", bytes.NewReader(raw))
	if err != nil {
		return nil, &domain.BackendError{Retryable: false, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Ping comprueba alcanzabilidad contra el health del backend.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &domain.BackendError{Retryable: true, Message: err.Error()}
	}
	_, err = c.do(req)
	return err
}

// do ejecuta la petición y clasifica el resultado:
// error de transporte o 5xx/429 -> reintentable; resto de 4xx -> permanente.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.BackendError{Retryable: true, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &domain.BackendError{Retryable: true, Message: fmt.Sprintf("leer respuesta: %v", err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.BackendError{Retryable: true, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(body))}
	default:
		return nil, &domain.BackendError{Retryable: false, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(body))}
	}
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
