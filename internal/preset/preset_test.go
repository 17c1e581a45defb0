package preset

import "testing"

func TestGet(t *testing.T) {
	p := Get(DefaultID)
	if p == nil {
		t.Fatalf("Get(%q) = nil, want default preset", DefaultID)
	}
	if p.AI1 == "" || p.AI2 == "" {
		t.Errorf("default preset has empty persona prompts: %+v", p)
	}

	if Get("nonexistent") != nil {
		t.Error("Get(nonexistent) != nil, want nil")
	}
}

func TestGetCustom(t *testing.T) {
	p := Get(CustomID)
	if p == nil {
		t.Fatal("Get(custom) = nil")
	}
	if p.AI1 != "" || p.AI2 != "" {
		t.Errorf("custom preset carries prompts: %+v", p)
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) < 2 {
		t.Fatalf("len(All()) = %d, want built-in presets", len(all))
	}

	seen := map[string]bool{}
	for _, p := range all {
		if p.ID == "" || p.Name == "" {
			t.Errorf("preset missing id or name: %+v", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true
	}
	if !seen[DefaultID] {
		t.Errorf("All() does not contain the default preset %q", DefaultID)
	}

	// Mutating the returned slice must not affect the built-ins.
	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All() exposes the underlying preset slice")
	}
}
