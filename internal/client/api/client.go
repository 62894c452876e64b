// Package api implements the HTTP client for the remote grimoire store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rsoares/grimorio/pkg/api"
)

// ClientAPI is the remote-store surface consumed by the sync and favorites
// services. The remote store itself is an external collaborator.
type ClientAPI interface {
	// Ping probes remote reachability with a lightweight request.
	Ping(ctx context.Context) error

	// ListPresets returns the user's presets.
	ListPresets(ctx context.Context, userID string) ([]api.Preset, error)

	// CreatePreset inserts a preset and returns the stored row, id included.
	CreatePreset(ctx context.Context, req api.CreatePresetRequest) (*api.Preset, error)

	// UpdatePreset applies a partial update to the preset with the given id.
	UpdatePreset(ctx context.Context, id, userID string, req api.UpdatePresetRequest) (*api.Preset, error)

	// DeletePreset removes the preset with the given id.
	DeletePreset(ctx context.Context, id, userID string) error

	// ListSpells returns the full spell compendium.
	ListSpells(ctx context.Context) ([]api.Spell, error)

	// ListSpellClassLinks returns the spell-to-class cross-reference table.
	ListSpellClassLinks(ctx context.Context) ([]api.SpellClassLink, error)
}

// Client is the HTTP implementation of ClientAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ClientAPI = (*Client)(nil)

// NewClient creates a new API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping probes the remote store's health endpoint. Any response with a 2xx
// status counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ListPresets returns the user's presets.
func (c *Client) ListPresets(ctx context.Context, userID string) ([]api.Preset, error) {
	var resp []api.Preset
	path := "/api/v1/presets?user_id=" + url.QueryEscape(userID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list presets request failed: %w", err)
	}
	return resp, nil
}

// CreatePreset inserts a preset and returns the stored row.
func (c *Client) CreatePreset(ctx context.Context, req api.CreatePresetRequest) (*api.Preset, error) {
	var resp api.Preset
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/presets", req, &resp); err != nil {
		return nil, fmt.Errorf("create preset request failed: %w", err)
	}
	return &resp, nil
}

// UpdatePreset applies a partial update to a preset.
func (c *Client) UpdatePreset(ctx context.Context, id, userID string, req api.UpdatePresetRequest) (*api.Preset, error) {
	var resp api.Preset
	path := fmt.Sprintf("/api/v1/presets/%s?user_id=%s", url.PathEscape(id), url.QueryEscape(userID))
	if err := c.doRequest(ctx, http.MethodPatch, path, req, &resp); err != nil {
		return nil, fmt.Errorf("update preset request failed: %w", err)
	}
	return &resp, nil
}

// DeletePreset removes a preset.
func (c *Client) DeletePreset(ctx context.Context, id, userID string) error {
	path := fmt.Sprintf("/api/v1/presets/%s?user_id=%s", url.PathEscape(id), url.QueryEscape(userID))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete preset request failed: %w", err)
	}
	return nil
}

// ListSpells returns the full spell compendium.
func (c *Client) ListSpells(ctx context.Context) ([]api.Spell, error) {
	var resp []api.Spell
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/spells", nil, &resp); err != nil {
		return nil, fmt.Errorf("list spells request failed: %w", err)
	}
	return resp, nil
}

// ListSpellClassLinks returns the spell-to-class cross-reference table.
func (c *Client) ListSpellClassLinks(ctx context.Context) ([]api.SpellClassLink, error) {
	var resp []api.SpellClassLink
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/spell-classes", nil, &resp); err != nil {
		return nil, fmt.Errorf("list spell classes request failed: %w", err)
	}
	return resp, nil
}

// doRequest performs an HTTP request against the remote store.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
