package openrouter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Pricing is a model's USD cost per 1000 tokens.
type Pricing struct {
	Prompt     float64 `json:"prompt"`
	Completion float64 `json:"completion"`
}

// Model is one entry of the model catalog.
type Model struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Pricing Pricing `json:"pricing"`
}

// Free reports whether the model costs nothing: either its id carries the
// ":free" suffix or both pricing fields are zero.
func (m Model) Free() bool {
	return strings.Contains(m.ID, ":free") || (m.Pricing.Prompt == 0 && m.Pricing.Completion == 0)
}

// ListModels fetches the model catalog. The API serializes pricing values
// inconsistently (numbers or numeric strings), so fields are extracted
// tolerantly rather than decoded into a fixed schema.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}

	var models []Model
	for _, item := range gjson.GetBytes(body, "data").Array() {
		id := item.Get("id").String()
		if id == "" {
			continue
		}
		name := item.Get("name").String()
		if name == "" {
			name = id
		}
		models = append(models, Model{
			ID:   id,
			Name: name,
			Pricing: Pricing{
				Prompt:     item.Get("pricing.prompt").Float(),
				Completion: item.Get("pricing.completion").Float(),
			},
		})
	}
	return models, nil
}
