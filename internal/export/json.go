package export

import (
	"encoding/json"
	"fmt"
	"io"

	"synthetica/internal/core"
)

// JSONExporter exports transcripts to JSON format. The output round-trips
// through Import unchanged.
type JSONExporter struct{}

// Export writes the transcript as pretty-printed JSON.
func (e *JSONExporter) Export(messages []core.Message, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(messages)
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}

// Import reads a JSON transcript previously produced by Export. Timestamps
// revive via RFC 3339. Messages with an unknown speaker are rejected.
func Import(r io.Reader) ([]core.Message, error) {
	var messages []core.Message
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	for i, msg := range messages {
		switch msg.Speaker {
		case core.SpeakerOne, core.SpeakerTwo, core.SpeakerSystem:
		default:
			return nil, fmt.Errorf("message %d has unknown speaker %q", i, msg.Speaker)
		}
	}
	return messages, nil
}
