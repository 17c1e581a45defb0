package openrouter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Pricing values arrive both as numeric strings and as numbers.
		w.Write([]byte(`{"data":[
			{"id":"anthropic/claude","name":"Claude","pricing":{"prompt":"0.003","completion":"0.015"}},
			{"id":"meta/llama:free","name":"Llama","pricing":{"prompt":0,"completion":0}},
			{"id":"mistral/small","pricing":{"prompt":0.0002,"completion":0.0006}},
			{"pricing":{"prompt":"1"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	models, err := client.ListModels(context.Background(), "sk-test")
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}

	if len(models) != 3 {
		t.Fatalf("len(models) = %d, want 3 (entries without an id are dropped)", len(models))
	}
	if models[0].Pricing.Prompt != 0.003 || models[0].Pricing.Completion != 0.015 {
		t.Errorf("string pricing = %+v, want {0.003 0.015}", models[0].Pricing)
	}
	if models[2].Name != "mistral/small" {
		t.Errorf("missing name fell back to %q, want id", models[2].Name)
	}
}

func TestListModelsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListModels(context.Background(), "")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		t.Fatalf("ListModels() error = %v, want 401 *StatusError", err)
	}
}

func TestModelFree(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		want  bool
	}{
		{"free suffix", Model{ID: "meta/llama:free", Pricing: Pricing{Prompt: 0.001}}, true},
		{"zero pricing", Model{ID: "some/model", Pricing: Pricing{}}, true},
		{"paid", Model{ID: "anthropic/claude", Pricing: Pricing{Prompt: 0.003, Completion: 0.015}}, false},
		{"prompt only", Model{ID: "x/y", Pricing: Pricing{Prompt: 0.001}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.model.Free(); got != tt.want {
				t.Errorf("Free() = %v, want %v", got, tt.want)
			}
		})
	}
}
