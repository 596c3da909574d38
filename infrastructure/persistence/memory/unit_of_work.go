package memory

import (
	"context"

	"go.uber.org/zap"

	"inklings-backend/application/ports"
)

// UnitOfWork gives multi-step mutations all-or-nothing semantics against the
// in-memory store. Execute holds the store's write lock for the whole
// transaction and rewinds to a snapshot on failure, so readers never observe
// a half-applied mutation.
type UnitOfWork struct {
	store  *Store
	logger *zap.Logger
}

// NewUnitOfWork creates a unit of work over a store
func NewUnitOfWork(store *Store, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{store: store, logger: logger}
}

// Execute runs fn against transaction-scoped repositories
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.takeSnapshot()
	tx := newRepositories(u.store, false)

	if err := fn(ctx, tx); err != nil {
		u.store.restore(snap)
		u.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}
