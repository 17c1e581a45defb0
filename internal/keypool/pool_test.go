package keypool

import (
	"reflect"
	"testing"
)

func TestPoolRotation(t *testing.T) {
	p := New("a", "b", "c")

	var seen []string
	for i := 0; i < 6; i++ {
		k, err := p.Current()
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		seen = append(seen, k)
		p.Advance()
	}

	want := []string{"a", "b", "c", "a", "b", "c"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("rotation order = %v, want %v", seen, want)
	}
}

func TestPoolAddDeduplicates(t *testing.T) {
	p := New("a", "b", "a", "", "b")
	if got, want := p.Keys(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	p.Add("a")
	if p.Len() != 2 {
		t.Errorf("Len() after duplicate Add = %d, want 2", p.Len())
	}
}

func TestPoolEmpty(t *testing.T) {
	p := New()
	if _, err := p.Current(); err != ErrEmpty {
		t.Errorf("Current() on empty pool = %v, want ErrEmpty", err)
	}

	// Advance on an empty pool must not panic.
	p.Advance()
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}

func TestPoolRemoveClampsCursor(t *testing.T) {
	p := New("a", "b", "c")
	p.Advance()
	p.Advance() // cursor on "c"

	p.Remove("c")
	k, err := p.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if k != "a" {
		t.Errorf("Current() after removing cursor target = %q, want %q", k, "a")
	}
}

func TestPoolRemoveMissingKey(t *testing.T) {
	p := New("a", "b")
	p.Remove("nope")
	if got, want := p.Keys(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestPoolClear(t *testing.T) {
	p := New("a", "b")
	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", p.Len())
	}
	if _, err := p.Current(); err != ErrEmpty {
		t.Errorf("Current() after Clear = %v, want ErrEmpty", err)
	}
}

func TestPoolKeysReturnsCopy(t *testing.T) {
	p := New("a", "b")
	keys := p.Keys()
	keys[0] = "mutated"
	if got, _ := p.Current(); got != "a" {
		t.Errorf("Current() = %q after mutating Keys() result, want %q", got, "a")
	}
}
