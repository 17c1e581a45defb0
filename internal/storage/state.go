package storage

import (
	"time"

	"synthetica/internal/core"
	"synthetica/internal/openrouter"
)

// State keys. One value per concern so partial saves stay cheap.
const (
	KeyAI1Config      = "ai1_config"
	KeyAI2Config      = "ai2_config"
	KeyTranscript     = "transcript"
	KeyAPIKeys        = "api_keys"
	KeySelectedPreset = "selected_preset"
	KeyModelCache     = "model_cache"
)

// ModelCacheTTL is the freshness window of the cached model catalog.
const ModelCacheTTL = 6 * time.Hour

// ModelCache is the time-stamped model catalog snapshot.
type ModelCache struct {
	FetchedAt time.Time          `json:"fetchedAt"`
	Models    []openrouter.Model `json:"models"`
}

// Fresh reports whether the cache is still within its freshness window.
func (c *ModelCache) Fresh(now time.Time) bool {
	return !c.FetchedAt.IsZero() && now.Sub(c.FetchedAt) < ModelCacheTTL
}

// AppState bundles everything the UI layers persist between sessions.
type AppState struct {
	AI1            core.AIConfig
	AI2            core.AIConfig
	Transcript     []core.Message
	APIKeys        []string
	SelectedPreset string
}

// LoadAppState reads the persisted state, filling defaults for anything
// missing or unreadable.
func LoadAppState(store Store) AppState {
	state := AppState{
		AI1:            core.DefaultAIConfig(),
		AI2:            core.DefaultAIConfig(),
		SelectedPreset: "",
	}
	store.Get(KeyAI1Config, &state.AI1)
	store.Get(KeyAI2Config, &state.AI2)
	store.Get(KeyTranscript, &state.Transcript)
	store.Get(KeyAPIKeys, &state.APIKeys)
	store.Get(KeySelectedPreset, &state.SelectedPreset)
	return state
}

// SaveAppState writes the full state back. The first error wins but all
// keys are attempted.
func SaveAppState(store Store, state AppState) error {
	var firstErr error
	save := func(key string, v any) {
		if err := store.Put(key, v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	save(KeyAI1Config, state.AI1)
	save(KeyAI2Config, state.AI2)
	save(KeyTranscript, state.Transcript)
	save(KeyAPIKeys, state.APIKeys)
	save(KeySelectedPreset, state.SelectedPreset)
	return firstErr
}

// LoadModelCache returns the cached catalog, or nil when absent.
func LoadModelCache(store Store) *ModelCache {
	var cache ModelCache
	ok, err := store.Get(KeyModelCache, &cache)
	if err != nil || !ok {
		return nil
	}
	return &cache
}

// SaveModelCache stamps and stores the catalog.
func SaveModelCache(store Store, models []openrouter.Model, now time.Time) error {
	return store.Put(KeyModelCache, ModelCache{FetchedAt: now, Models: models})
}
