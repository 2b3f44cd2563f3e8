// Package directory implements the operations shared by every hierarchical
// directory entity: grid listing, tree views and audited writes guarded by
// the cycle check.
package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

type repo[T any] interface {
	query.Store[T]
	GetByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (int64, error)
	Update(ctx context.Context, v T) error
	ParentLinks(ctx context.Context) (hierarchy.Links, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GridConfig bounds the page size of List.
type GridConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Service provides directory operations for one entity type.
type Service[T domain.Directory[T]] struct {
	kind   domain.EntityKind
	repo   repo[T]
	engine *query.Engine[T]
	tx     txManager
	grid   GridConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a directory Service. opts configure the query engine.
func NewService[T domain.Directory[T]](
	log *slog.Logger,
	kind domain.EntityKind,
	repo repo[T],
	tx txManager,
	grid GridConfig,
	opts ...query.Option,
) *Service[T] {
	if grid.DefaultPageSize <= 0 {
		grid.DefaultPageSize = 20
	}
	if grid.MaxPageSize < grid.DefaultPageSize {
		grid.MaxPageSize = grid.DefaultPageSize
	}
	return &Service[T]{
		kind:   kind,
		repo:   repo,
		engine: query.NewEngine(kind.String(), repo, log, opts...),
		tx:     tx,
		grid:   grid,
		log:    log.With("service", "directory", "entity", kind.String()),
		now:    time.Now,
	}
}

// Kind returns the entity kind the service manages.
func (s *Service[T]) Kind() domain.EntityKind {
	return s.kind
}

// Schema returns the query schema of T.
func (s *Service[T]) Schema() query.Schema[T] {
	return s.engine.Schema()
}
