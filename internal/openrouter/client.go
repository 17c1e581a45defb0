// Package openrouter implements a streaming client for the OpenRouter
// chat-completion API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 4 * 1024

// ChatMessage is one role/content entry of a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamRequest describes one streaming completion attempt.
type StreamRequest struct {
	APIKey           string
	Model            string
	Messages         []ChatMessage
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	MaxTokens        int

	// OnUsage, if set, is invoked at most once when the stream is exhausted
	// and a usage record was observed. The last record wins if the API sends
	// more than one.
	OnUsage func(Usage)
}

type completionBody struct {
	Model            string        `json:"model"`
	Stream           bool          `json:"stream"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	MaxTokens        int           `json:"max_tokens"`
	Messages         []ChatMessage `json:"messages"`
}

// Client issues requests against one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL selects the production API.
// No client-level timeout is set; streams are bounded by the caller's
// context instead.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// StreamCompletion issues one streaming completion request. On a non-success
// status it fails with a *StatusError and no output is emitted. On success
// the returned Stream yields content deltas until exhaustion; cancelling ctx
// aborts the request and surfaces from Next.
func (c *Client) StreamCompletion(ctx context.Context, req StreamRequest) (*Stream, error) {
	body, err := json.Marshal(completionBody{
		Model:            req.Model,
		Stream:           true,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		MaxTokens:        req.MaxTokens,
		Messages:         req.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	return &Stream{
		body:    resp.Body,
		dec:     NewDecoder(resp.Body),
		onUsage: req.OnUsage,
	}, nil
}

// Stream is a lazy, finite, non-restartable sequence of content deltas.
type Stream struct {
	body    io.ReadCloser
	dec     *Decoder
	onUsage func(Usage)
	usage   *Usage
}

// Next returns the next content delta. It returns io.EOF when the stream is
// exhausted; any other error is terminal for this attempt.
func (s *Stream) Next() (string, error) {
	for {
		ev, err := s.dec.Next()
		if err == io.EOF {
			s.body.Close()
			if s.usage != nil && s.onUsage != nil {
				s.onUsage(*s.usage)
				s.onUsage = nil
			}
			return "", io.EOF
		}
		if err != nil {
			s.body.Close()
			return "", err
		}
		if ev.Usage != nil {
			u := *ev.Usage
			s.usage = &u
		}
		if ev.Delta != "" {
			return ev.Delta, nil
		}
	}
}

// Usage returns the last usage record seen, or nil if the API sent none.
func (s *Stream) Usage() *Usage {
	return s.usage
}

// Close releases the underlying response body. Safe to call after Next has
// returned a terminal result.
func (s *Stream) Close() error {
	return s.body.Close()
}
