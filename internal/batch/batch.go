// Package batch parses many queries concurrently on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/parser"
)

// Result is the parse outcome for one query of a batch.
type Result struct {
	Conditions  ir.Conditions `json:"conditions"`
	Fingerprint string        `json:"fingerprint"`
	Truncated   bool          `json:"truncated"`
	Absent      bool          `json:"absent"`
}

// Parser fans queries out over an ants pool. Safe for concurrent use.
type Parser struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// New creates a Parser with the given number of workers.
// Zero or negative means runtime.NumCPU().
func New(workers int, logger *slog.Logger) (*Parser, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Parser{logger: logger}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		p.logger.Error("batch parse panic", slog.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	p.pool = pool
	return p, nil
}

// Workers returns the pool capacity.
func (p *Parser) Workers() int {
	return p.pool.Cap()
}

// ParseAll parses every query and returns results in input order.
// A nil entry is absent input. If ctx is cancelled before all queries are
// parsed, ParseAll returns ctx.Err() and no results.
func (p *Parser) ParseAll(ctx context.Context, queries []*string) ([]Result, error) {
	results := make([]Result, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			results[i] = parseOne(q)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit query %d: %w", i, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("batch parsed", slog.Int("queries", len(queries)))
	return results, nil
}

func parseOne(q *string) Result {
	a := parser.Analyze(q)
	return Result{
		Conditions:  a.Conditions,
		Fingerprint: ir.MustFingerprint(a.Conditions),
		Truncated:   a.Truncated,
		Absent:      a.Absent,
	}
}

// Close releases the pool, waiting up to three seconds for running tasks.
func (p *Parser) Close() error {
	return p.pool.ReleaseTimeout(3 * time.Second)
}
