package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"synthetica/internal/engine"
)

// streamPollInterval is how often the SSE endpoint re-reads the engine
// snapshot. Deltas accumulate in the transcript between polls, so clients
// see a consistent, monotonically growing trailing message.
const streamPollInterval = 500 * time.Millisecond

// handleDebateStream streams transcript updates using Server-Sent Events.
func (h *Handler) handleDebateStream(w http.ResponseWriter, r *http.Request) {
	slog.Debug("New debate stream connection", "remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Streaming unsupported: ResponseWriter does not implement http.Flusher")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Send the current state immediately so late joiners catch up.
	last := h.sendSnapshot(w, flusher, nil)
	if last != nil && last.Status != engine.StatusRunning {
		h.sendSSEEvent(w, flusher, "done", map[string]string{"status": string(last.Status)})
		return
	}

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("Stream client disconnected", "remote_addr", r.RemoteAddr)
			return
		case <-ticker.C:
			last = h.sendSnapshot(w, flusher, last)
			if last != nil && last.Status != engine.StatusRunning {
				h.sendSSEEvent(w, flusher, "done", map[string]string{"status": string(last.Status)})
				return
			}
		}
	}
}

// sendSnapshot emits a "snapshot" event when the debate state changed since
// prev. Returns the latest snapshot either way.
func (h *Handler) sendSnapshot(w http.ResponseWriter, flusher http.Flusher, prev *engine.Snapshot) *engine.Snapshot {
	snapshot := h.engine.Snapshot()
	if prev != nil && !snapshotChanged(*prev, snapshot) {
		return prev
	}
	h.sendSSEEvent(w, flusher, "snapshot", snapshot)
	return &snapshot
}

func snapshotChanged(prev, next engine.Snapshot) bool {
	if prev.Status != next.Status || prev.Turn != next.Turn || len(prev.Messages) != len(next.Messages) {
		return true
	}
	if len(next.Messages) == 0 {
		return false
	}
	return prev.Messages[len(prev.Messages)-1].Text != next.Messages[len(next.Messages)-1].Text
}

// sendSSEEvent sends a server-sent event.
func (h *Handler) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		slog.Error("Failed to write SSE event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		slog.Error("Failed to write SSE data", "error", err)
		return
	}
	flusher.Flush()
}
