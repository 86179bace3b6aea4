package warehouse

import "context"

// QueryRunner runs a statement against the analytical store and returns its rows.
// Implementations must be safe for concurrent use.
type QueryRunner interface {
	RunQuery(ctx context.Context, stmt Statement) (*Table, error)
}

// Catalog exposes dataset metadata.
type Catalog interface {
	ListTables(ctx context.Context, dataset TableRef) ([]TableRef, error)
	TableSchema(ctx context.Context, table TableRef) ([]Field, error)
}

// Source is a runner that can also describe its datasets.
type Source interface {
	QueryRunner
	Catalog
	Close() error
}
