// Package core contains the core domain types for synthetica.
package core

import (
	"time"
)

// Speaker identifies the author of a transcript message.
type Speaker string

const (
	SpeakerOne    Speaker = "1"
	SpeakerTwo    Speaker = "2"
	SpeakerSystem Speaker = "system"
)

// Label returns the display name used in prompts and exports.
func (s Speaker) Label() string {
	switch s {
	case SpeakerOne:
		return "AI 1"
	case SpeakerTwo:
		return "AI 2"
	default:
		return "System"
	}
}

// Message is a single entry in the debate transcript. Only the trailing
// message of a running debate mutates; everything before it is final.
type Message struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AIConfig holds one participant's persona and generation parameters.
// It is owned by the configuration layer and read-only to the engine.
type AIConfig struct {
	SystemPrompt     string  `json:"systemPrompt"`
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	TopP             float64 `json:"topP"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
}

// DefaultAIConfig returns a participant config with the stock generation
// parameters. The model is intentionally left empty; a debate cannot start
// until one is chosen.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Temperature:      0.9,
		MaxTokens:        512,
		TopP:             1.0,
		FrequencyPenalty: 0,
	}
}

// DefaultMaxTurns is the stock turn bound for a new debate.
const DefaultMaxTurns = 20

// ParticipantTokens holds per-participant token counts.
type ParticipantTokens struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// ParticipantCost holds per-participant and total USD cost.
type ParticipantCost struct {
	P1    float64 `json:"p1"`
	P2    float64 `json:"p2"`
	Total float64 `json:"total"`
}

// UsageTotals is the running usage accounting for a debate. Values are
// monotonically non-decreasing within a run except on explicit reset.
type UsageTotals struct {
	Tokens        ParticipantTokens `json:"tokens"`
	Cost          ParticipantCost   `json:"cost"`
	LastLatencyMs *int64            `json:"lastLatencyMs"`
}
