package core

import "testing"

func TestSpeakerLabel(t *testing.T) {
	tests := []struct {
		speaker Speaker
		want    string
	}{
		{SpeakerOne, "AI 1"},
		{SpeakerTwo, "AI 2"},
		{SpeakerSystem, "System"},
		{Speaker("other"), "System"},
	}

	for _, tt := range tests {
		if got := tt.speaker.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.speaker, got, tt.want)
		}
	}
}

func TestDefaultAIConfig(t *testing.T) {
	cfg := DefaultAIConfig()
	if cfg.Model != "" {
		t.Errorf("Model = %q, want empty", cfg.Model)
	}
	if cfg.Temperature != 0.9 || cfg.MaxTokens != 512 || cfg.TopP != 1.0 || cfg.FrequencyPenalty != 0 {
		t.Errorf("DefaultAIConfig() = %+v", cfg)
	}
}
