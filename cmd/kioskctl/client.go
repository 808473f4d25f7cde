package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"seniorkiosk/internal/kiosk"
	"seniorkiosk/internal/models"
)

// ApiClient talks to the kiosk API the way the front end does
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// ActionResponse is returned by every state-changing endpoint
type ActionResponse struct {
	Screen  models.Screen  `json:"screen"`
	Ignored bool           `json:"ignored"`
	Message string         `json:"message"`
	Session kiosk.Snapshot `json:"session"`
}

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// NewApiClient creates a client; timeout bounds a whole voice round trip
func NewApiClient(baseURL, token string, timeout time.Duration) *ApiClient {
	return &ApiClient{
		httpClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
		Token:      token,
	}
}

func (c *ApiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *ApiClient) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var resp struct {
		Items []models.MenuItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/menu", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *ApiClient) Session(ctx context.Context) (kiosk.Snapshot, error) {
	var snap kiosk.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/v1/session", nil, &snap)
	return snap, err
}

// Say runs a full voice turn with text standing in for recognized speech
func (c *ApiClient) Say(ctx context.Context, text string) (*ActionResponse, error) {
	var turn struct {
		TurnID int64 `json:"turn_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/voice/activate", nil, &turn); err != nil {
		return nil, err
	}

	var resp ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/voice/transcript", map[string]interface{}{
		"turn_id":    turn.TurnID,
		"transcript": text,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ApiClient) action(ctx context.Context, method, path string, body interface{}) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ApiClient) Select(ctx context.Context, id string) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/menu/"+id+"/select", nil)
}

func (c *ApiClient) Temperature(ctx context.Context, t models.Temperature) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/detail/temperature", map[string]string{"temperature": string(t)})
}

func (c *ApiClient) AddToCart(ctx context.Context) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/detail/add", nil)
}

func (c *ApiClient) Back(ctx context.Context) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/back", nil)
}

func (c *ApiClient) OpenCart(ctx context.Context) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/cart/open", nil)
}

func (c *ApiClient) Remove(ctx context.Context, index int) (*ActionResponse, error) {
	return c.action(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/cart/%d", index), nil)
}

func (c *ApiClient) Checkout(ctx context.Context) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/checkout", nil)
}

func (c *ApiClient) Home(ctx context.Context) (*ActionResponse, error) {
	return c.action(ctx, http.MethodPost, "/api/v1/home", nil)
}
