// Package handlers provides the HTTP API for driving debates.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"synthetica/internal/core"
	"synthetica/internal/engine"
	"synthetica/internal/export"
	"synthetica/internal/keypool"
	"synthetica/internal/openrouter"
	"synthetica/internal/preset"
	"synthetica/internal/storage"
	"synthetica/internal/usage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine  *engine.Engine
	pool    *keypool.Pool
	tracker *usage.Tracker
	client  *openrouter.Client
	store   storage.Store

	mu    sync.Mutex
	ai1   core.AIConfig
	ai2   core.AIConfig
	psel  string
}

// New creates a Handler seeded from persisted state.
func New(eng *engine.Engine, pool *keypool.Pool, tracker *usage.Tracker, client *openrouter.Client, store storage.Store) *Handler {
	state := storage.LoadAppState(store)
	for _, key := range state.APIKeys {
		pool.Add(key)
	}
	if len(state.Transcript) > 0 {
		if err := eng.ImportTranscript(state.Transcript); err != nil {
			slog.Warn("Failed to restore transcript", "error", err)
		}
	}
	return &Handler{
		engine:  eng,
		pool:    pool,
		tracker: tracker,
		client:  client,
		store:   store,
		ai1:     state.AI1,
		ai2:     state.AI2,
		psel:    state.SelectedPreset,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", h.handleListPresets)
		r.Get("/models", h.handleListModels)
		r.Get("/config", h.handleGetConfig)
		r.Put("/config", h.handlePutConfig)

		r.Get("/debate", h.handleDebateSnapshot)
		r.Get("/debate/stream", h.handleDebateStream)
		r.Get("/debate/export", h.handleExport)
		r.Post("/debate/start", h.handleStart)
		r.Post("/debate/stop", h.handleStop)
		r.Post("/debate/swap", h.handleSwap)
		r.Post("/debate/import", h.handleImport)

		r.Get("/usage", h.handleUsage)
		r.Post("/usage/reset", h.handleUsageReset)

		r.Get("/keys", h.handleListKeys)
		r.Post("/keys", h.handleAddKey)
		r.Delete("/keys", h.handleClearKeys)
		r.Delete("/keys/{key}", h.handleRemoveKey)
	})
	return r
}

// --- debate ---

type startRequest struct {
	AI1      *core.AIConfig `json:"ai1,omitempty"`
	AI2      *core.AIConfig `json:"ai2,omitempty"`
	Preset   string         `json:"preset,omitempty"`
	MaxTurns int            `json:"maxTurns,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.mu.Lock()
	if req.AI1 != nil {
		h.ai1 = *req.AI1
	}
	if req.AI2 != nil {
		h.ai2 = *req.AI2
	}
	if req.Preset != "" {
		h.psel = req.Preset
		if p := preset.Get(req.Preset); p != nil && req.Preset != preset.CustomID {
			h.ai1.SystemPrompt = p.AI1
			h.ai2.SystemPrompt = p.AI2
		}
	}
	ai1, ai2 := h.ai1, h.ai2
	h.mu.Unlock()

	if err := h.engine.Start(ai1, ai2, req.MaxTurns); err != nil {
		switch {
		case errors.Is(err, engine.ErrRunning):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrMissingModel), errors.Is(err, keypool.ErrEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.persistState()
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.engine.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": string(h.engine.Status())})
}

func (h *Handler) handleSwap(w http.ResponseWriter, r *http.Request) {
	if h.engine.Status() == engine.StatusRunning {
		writeError(w, http.StatusConflict, "cannot swap sides while a debate is running")
		return
	}
	h.mu.Lock()
	h.ai1, h.ai2 = h.ai2, h.ai1
	ai1, ai2 := h.ai1, h.ai2
	h.mu.Unlock()

	h.persistState()
	writeJSON(w, http.StatusOK, map[string]core.AIConfig{"ai1": ai1, "ai2": ai2})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	messages, err := export.Import(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.engine.ImportTranscript(messages); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.persistState()
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) handleDebateSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := exportFormat(r.URL.Query().Get("format"))
	exporter, err := export.GetExporter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot := h.engine.Snapshot()
	filename := export.GenerateFilename(time.Now(), exporter.FileExtension())
	w.Header().Set("Content-Disposition", "attachment; filename="+url.PathEscape(filename))
	w.Header().Set("Content-Type", contentTypeFor(format))
	if err := exporter.Export(snapshot.Messages, w); err != nil {
		slog.Error("Export failed", "format", format, "error", err)
	}
}

func exportFormat(raw string) export.Format {
	switch raw {
	case "", "json":
		return export.FormatJSON
	case "md", "markdown":
		return export.FormatMarkdown
	case "html":
		return export.FormatHTML
	case "pdf":
		return export.FormatPDF
	default:
		return export.Format(raw)
	}
}

func contentTypeFor(format export.Format) string {
	switch format {
	case export.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case export.FormatHTML:
		return "text/html; charset=utf-8"
	case export.FormatPDF:
		return "application/pdf"
	default:
		return "application/json; charset=utf-8"
	}
}

// --- usage ---

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Totals())
}

func (h *Handler) handleUsageReset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	writeJSON(w, http.StatusOK, h.tracker.Totals())
}

// --- configuration ---

type configResponse struct {
	AI1    core.AIConfig `json:"ai1"`
	AI2    core.AIConfig `json:"ai2"`
	Preset string        `json:"preset"`
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := configResponse{AI1: h.ai1, AI2: h.ai2, Preset: h.psel}
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req configResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mu.Lock()
	h.ai1 = req.AI1
	h.ai2 = req.AI2
	h.psel = req.Preset
	h.mu.Unlock()
	h.persistState()
	writeJSON(w, http.StatusOK, req)
}

// --- presets and models ---

func (h *Handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, preset.All())
}

func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	freeOnly := r.URL.Query().Get("free") == "1" || r.URL.Query().Get("free") == "true"

	models, err := h.models(r)
	if err != nil {
		var statusErr *openrouter.StatusError
		if errors.As(err, &statusErr) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if freeOnly {
		filtered := models[:0:0]
		for _, m := range models {
			if m.Free() {
				filtered = append(filtered, m)
			}
		}
		models = filtered
	}
	writeJSON(w, http.StatusOK, models)
}

// models serves the catalog from the persisted cache while fresh, fetching
// and re-stamping it otherwise.
func (h *Handler) models(r *http.Request) ([]openrouter.Model, error) {
	if cache := storage.LoadModelCache(h.store); cache != nil && cache.Fresh(time.Now()) {
		return cache.Models, nil
	}

	key, err := h.pool.Current()
	if err != nil {
		return nil, err
	}
	models, err := h.client.ListModels(r.Context(), key)
	if err != nil {
		return nil, err
	}
	if err := storage.SaveModelCache(h.store, models, time.Now()); err != nil {
		slog.Warn("Failed to cache model catalog", "error", err)
	}
	return models, nil
}

// --- credentials ---

func (h *Handler) handleListKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pool.Keys())
}

type keyRequest struct {
	Key string `json:"key"`
}

func (h *Handler) handleAddKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "a non-empty key is required")
		return
	}
	h.pool.Add(req.Key)
	h.persistState()
	writeJSON(w, http.StatusOK, h.pool.Keys())
}

func (h *Handler) handleRemoveKey(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}
	h.pool.Remove(key)
	h.persistState()
	writeJSON(w, http.StatusOK, h.pool.Keys())
}

func (h *Handler) handleClearKeys(w http.ResponseWriter, r *http.Request) {
	h.pool.Clear()
	h.persistState()
	writeJSON(w, http.StatusOK, h.pool.Keys())
}

// --- helpers ---

// persistState writes the current configs, credentials, and transcript to
// the key-value store.
func (h *Handler) persistState() {
	h.mu.Lock()
	state := storage.AppState{
		AI1:            h.ai1,
		AI2:            h.ai2,
		SelectedPreset: h.psel,
	}
	h.mu.Unlock()
	state.APIKeys = h.pool.Keys()
	state.Transcript = h.engine.Snapshot().Messages

	if err := storage.SaveAppState(h.store, state); err != nil {
		slog.Warn("Failed to persist state", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
