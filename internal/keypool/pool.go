// Package keypool manages an ordered pool of API credentials with a
// rotating cursor.
package keypool

import (
	"errors"
	"sync"
)

// ErrEmpty is returned when a credential is requested from an empty pool.
var ErrEmpty = errors.New("credential pool is empty")

// Pool is an ordered collection of credentials plus a current-index cursor.
// The engine owns rotation; the web layer may add and remove keys between
// turns, so access is mutex-guarded.
type Pool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New creates a pool seeded with the given credentials. Duplicates are
// dropped, preserving first occurrence order.
func New(keys ...string) *Pool {
	p := &Pool{}
	for _, k := range keys {
		p.Add(k)
	}
	return p
}

// Add appends a credential. Adding an existing credential is a no-op.
func (p *Pool) Add(key string) {
	if key == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.keys {
		if k == key {
			return
		}
	}
	p.keys = append(p.keys, key)
}

// Remove deletes a credential. The cursor is clamped into the remaining
// bounds so Current stays valid.
func (p *Pool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	if p.cursor >= len(p.keys) {
		p.cursor = 0
	}
}

// Clear removes all credentials and resets the cursor.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = nil
	p.cursor = 0
}

// Current returns the credential under the cursor.
func (p *Pool) Current() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return "", ErrEmpty
	}
	return p.keys[p.cursor], nil
}

// Advance moves the cursor to the next credential, wrapping around. It is a
// no-op on an empty pool.
func (p *Pool) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.keys)
}

// Len reports the pool size.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Keys returns a copy of the credentials in order.
func (p *Pool) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}
