package mem

import (
	"context"
	"sync"

	"nyctaxi/warehouse/warehouse"
)

// StaticRunner answers every statement with the same table or error.
// It records the statements it received, which tests use to check what ran.
type StaticRunner struct {
	Table *warehouse.Table
	Err   error

	mu    sync.Mutex
	calls []warehouse.Statement
}

// NewStaticRunner returns a runner that always yields table.
func NewStaticRunner(table *warehouse.Table) *StaticRunner {
	return &StaticRunner{Table: table}
}

// NewFailingRunner returns a runner that always fails with err.
func NewFailingRunner(err error) *StaticRunner {
	return &StaticRunner{Err: err}
}

func (r *StaticRunner) RunQuery(ctx context.Context, stmt warehouse.Statement) (*warehouse.Table, error) {
	r.mu.Lock()
	r.calls = append(r.calls, stmt)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Table, nil
}

// Calls returns a copy of the statements run so far.
func (r *StaticRunner) Calls() []warehouse.Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]warehouse.Statement, len(r.calls))
	copy(out, r.calls)
	return out
}
