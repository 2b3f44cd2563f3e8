package memory

import (
	"context"
	"sync"
)

type txCtxKey struct{}

// TxManager serializes units of work so a hierarchy check and the write it
// guards cannot interleave with another writer. There is no rollback: a
// failing unit of work must not have written anything yet.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a TxManager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTx runs fn while holding the write lock. Nested calls reuse it.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txCtxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txCtxKey{}, struct{}{}))
}
