package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs_Monotonic(t *testing.T) {
	g := NewSequentialIDs()
	assert.Equal(t, int64(0), g.Issued())
	assert.Equal(t, "test-req-000001", g.NewID())
	assert.Equal(t, "test-req-000002", g.NewID())
	assert.Equal(t, int64(2), g.Issued())

	g.Reset()
	assert.Equal(t, "test-req-000001", g.NewID())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	g := NewSequentialIDs()
	const workers, perWorker = 20, 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := g.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), g.Issued())
}

func TestFixedID(t *testing.T) {
	assert.Equal(t, "abc", FixedID("abc").NewID())
	assert.Equal(t, "test-req-default", FixedID("").NewID())
}
