package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out request IDs "test-req-000001", "test-req-000002", ...
//
// Used in place of the UUID generator so HTTP tests and access logs are
// deterministic. Safe for concurrent use.
type SequentialIDs struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialIDs returns a generator whose first ID ends in 000001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next request ID.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("test-req-%06d", g.seq)
}

// Issued returns how many IDs have been handed out.
func (g *SequentialIDs) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedID always returns the same request ID.
type FixedID string

// NewID returns the fixed ID, or "test-req-default" when empty.
func (f FixedID) NewID() string {
	if f == "" {
		return "test-req-default"
	}
	return string(f)
}
