package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8173 {
		t.Errorf("Port = %d, want 8173", cfg.Server.Port)
	}
	if cfg.Defaults.Preset != "marx_smith" {
		t.Errorf("Preset = %q, want marx_smith", cfg.Defaults.Preset)
	}
	if cfg.Defaults.Temperature != 0.9 || cfg.Defaults.MaxTokens != 512 || cfg.Defaults.TopP != 1.0 {
		t.Errorf("sampling defaults = %+v", cfg.Defaults)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != Default().Server.Port {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  port: 9000
api:
  base_url: http://localhost:1234/v1
  keys:
    - sk-file
defaults:
  preset: socrates_nietzsche
  model: test/model
  max_turns: 8
  temperature: 0.7
  max_tokens: 256
  top_p: 0.95
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if !reflect.DeepEqual(cfg.API.Keys, []string{"sk-file"}) {
		t.Errorf("Keys = %v, want [sk-file]", cfg.API.Keys)
	}
	if cfg.Defaults.MaxTurns != 8 || cfg.Defaults.Model != "test/model" {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() error = nil, want parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("OPENROUTER_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("OPENROUTER_API_KEY", "sk-env")
	t.Setenv("OPENROUTER_API_KEYS", "sk-env, sk-two")
	t.Setenv("DEFAULT_MODEL", "env/model")
	t.Setenv("DEFAULT_MAX_TURNS", "3")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	// sk-env appears in both variables; it is kept once.
	if !reflect.DeepEqual(cfg.API.Keys, []string{"sk-env", "sk-two"}) {
		t.Errorf("Keys = %v, want [sk-env sk-two]", cfg.API.Keys)
	}
	if cfg.Defaults.Model != "env/model" || cfg.Defaults.MaxTurns != 3 {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
}

func TestEnvOverridesIgnoreInvalidNumbers(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("DEFAULT_MAX_TURNS", "-5")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 8173 {
		t.Errorf("Port = %d, want default after invalid override", cfg.Server.Port)
	}
	if cfg.Defaults.MaxTurns != Default().Defaults.MaxTurns {
		t.Errorf("MaxTurns = %d, want default after invalid override", cfg.Defaults.MaxTurns)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.Port = 9090
	cfg.API.Keys = []string{"sk-saved"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got.Server.Port != 9090 || !reflect.DeepEqual(got.API.Keys, []string{"sk-saved"}) {
		t.Errorf("roundtrip = %+v", got)
	}
}

func TestParticipantDefaults(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Model = "test/model"

	p := cfg.ParticipantDefaults()
	if p.Model != "test/model" || p.Temperature != 0.9 || p.MaxTokens != 512 || p.TopP != 1.0 {
		t.Errorf("ParticipantDefaults() = %+v", p)
	}
	if p.SystemPrompt != "" {
		t.Errorf("SystemPrompt = %q, want empty", p.SystemPrompt)
	}
}
