package repository

import (
	"context"

	"exploresync-be/internal/model"
)

type CounterRepository interface {
	// Ensure creates the (groupId, username) counter row if it does not
	// exist yet. Idempotent.
	Ensure(ctx context.Context, groupId, username string) error

	// IncrementExcept atomically adds 1 to kind on every counter row of the
	// group except exceptUsername's. Must be a single bulk update at the
	// storage layer, never a per-row read-modify-write.
	IncrementExcept(ctx context.Context, groupId, exceptUsername string, kind model.CounterKind) error

	// Reset sets kind to 0 on the single matching row. A missing row is a
	// silent no-op.
	Reset(ctx context.Context, groupId, username string, kind model.CounterKind) error

	// Get returns the current value of kind, or 0 when no row exists.
	Get(ctx context.Context, groupId, username string, kind model.CounterKind) (int64, error)
}
