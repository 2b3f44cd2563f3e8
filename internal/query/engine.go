package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Fallback reasons reported to the fallback hook.
const (
	ReasonUnknownSort    = "unknown_sort_column"
	ReasonUnknownInclude = "unknown_include"
	ReasonStoreOrder     = "store_rejected_order"
	ReasonStoreFilter    = "store_rejected_filter"
)

// FallbackHook observes every resolution failure the engine recovers from.
type FallbackHook func(entity, reason string)

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	onFallback FallbackHook
}

// WithFallbackHook registers a hook called on every recovered resolution failure.
func WithFallbackHook(h FallbackHook) Option {
	return func(o *engineOptions) { o.onFallback = h }
}

// Engine runs grid queries for one entity type against a Store.
type Engine[T Entity[T]] struct {
	name   string
	store  Store[T]
	schema Schema[T]
	log    *slog.Logger
	opts   engineOptions
}

// NewEngine creates an Engine. name identifies the entity in logs and metrics.
func NewEngine[T Entity[T]](name string, store Store[T], log *slog.Logger, opts ...Option) *Engine[T] {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[T]{
		name:   name,
		store:  store,
		schema: SchemaOf[T](),
		log:    log.With("component", "query", "entity", name),
		opts:   o,
	}
}

// Schema returns the schema the engine resolves names against.
func (e *Engine[T]) Schema() Schema[T] {
	return e.schema
}

// plan is a spec with every name resolved.
type plan[T any] struct {
	where    Predicate[T]
	order    Order[T]
	includes []string
}

// Query returns one page of the filtered, ordered set and the size of the
// whole filtered set.
func (e *Engine[T]) Query(ctx context.Context, spec Spec[T]) ([]T, int, error) {
	if spec.PageNumber < 1 || spec.PageSize < 1 {
		return nil, 0, fmt.Errorf("%w: pageNumber=%d pageSize=%d", ErrInvalidPage, spec.PageNumber, spec.PageSize)
	}

	p := e.resolve(ctx, spec)

	total, err := e.store.Count(ctx, p.where)
	if err != nil {
		if isUntranslatable(err) {
			return e.inMemory(ctx, p, spec.Offset(), spec.PageSize, err)
		}
		return nil, 0, err
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	items, err := e.fetch(ctx, &p, spec.Offset(), spec.PageSize)
	if err != nil {
		if isUntranslatable(err) {
			return e.inMemory(ctx, p, spec.Offset(), spec.PageSize, err)
		}
		return nil, 0, err
	}
	return items, total, nil
}

// All returns the whole filtered, ordered set. Paging fields of spec are ignored.
func (e *Engine[T]) All(ctx context.Context, spec Spec[T]) ([]T, error) {
	p := e.resolve(ctx, spec)

	items, err := e.fetch(ctx, &p, 0, 0)
	if err != nil {
		if isUntranslatable(err) {
			items, _, err = e.inMemory(ctx, p, 0, 0, err)
			return items, err
		}
		return nil, err
	}
	return items, nil
}

// fetch reads one window, retrying once with identity order when the store
// cannot order by the requested column.
func (e *Engine[T]) fetch(ctx context.Context, p *plan[T], offset, limit int) ([]T, error) {
	f := Fetch[T]{Where: p.where, Order: p.order, Includes: p.includes, Offset: offset, Limit: limit}

	items, err := e.store.FetchAll(ctx, f)
	if err != nil && errors.Is(err, ErrUnknownColumn) && p.order.Column != FieldID {
		e.fallback(ctx, ReasonStoreOrder, "store cannot order by column, using identity order",
			slog.String("column", p.order.Column), slog.String("error", err.Error()))
		p.order = identityOrder[T](false)
		f.Order = p.order
		items, err = e.store.FetchAll(ctx, f)
	}
	return items, err
}

// inMemory evaluates the predicate over the full unfiltered set when the
// store cannot translate it. Every relation is loaded so relation fields can
// be searched.
func (e *Engine[T]) inMemory(ctx context.Context, p plan[T], offset, limit int, cause error) ([]T, int, error) {
	e.fallback(ctx, ReasonStoreFilter, "store rejected predicate, filtering in memory",
		slog.String("error", cause.Error()))

	includes := make([]string, 0, len(e.schema.Relations))
	for _, r := range e.schema.Relations {
		includes = append(includes, r.Name)
	}

	all, err := e.store.FetchAll(ctx, Fetch[T]{Order: identityOrder[T](false), Includes: includes})
	if err != nil {
		return nil, 0, err
	}

	matched := make([]T, 0, len(all))
	for _, v := range all {
		if p.where.Match(v) {
			matched = append(matched, v)
		}
	}
	order := identityOrder[T](false)
	slices.SortStableFunc(matched, order.Compare)

	return Window(matched, offset, limit), len(matched), nil
}

func (e *Engine[T]) resolve(ctx context.Context, spec Spec[T]) plan[T] {
	p := plan[T]{
		where: Build(e.schema, spec.Status, spec.Filter, spec.Search),
		order: identityOrder[T](false),
	}

	if spec.SortColumn != "" {
		key, ok := e.schema.Order(spec.SortColumn, func(v T) int64 { return v.RecordID() })
		if ok {
			p.order = orderBy(key, ParseDirection(string(spec.Direction)) == Desc)
		} else {
			e.fallback(ctx, ReasonUnknownSort, "unknown sort column, using identity order",
				slog.String("column", spec.SortColumn))
		}
	}

	for _, name := range spec.Includes {
		rel, ok := e.schema.Relation(name)
		if !ok {
			e.fallback(ctx, ReasonUnknownInclude, "unknown include, ignoring", slog.String("include", name))
			continue
		}
		if !slices.Contains(p.includes, rel.Name) {
			p.includes = append(p.includes, rel.Name)
		}
	}

	return p
}

func (e *Engine[T]) fallback(ctx context.Context, reason, msg string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("reason", reason))
	e.log.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	if e.opts.onFallback != nil {
		e.opts.onFallback(e.name, reason)
	}
}

func identityOrder[T Record](desc bool) Order[T] {
	return Order[T]{
		Column: FieldID,
		Desc:   desc,
		Compare: func(a, b T) int {
			c := cmp.Compare(a.RecordID(), b.RecordID())
			if desc {
				return -c
			}
			return c
		},
	}
}

// orderBy sorts by key and breaks ties by ascending identity.
func orderBy[T Record](key SortKey[T], desc bool) Order[T] {
	if key.Name == FieldID {
		return identityOrder[T](desc)
	}
	return Order[T]{
		Column: key.Name,
		Desc:   desc,
		Compare: func(a, b T) int {
			c := key.Compare(a, b)
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
			return cmp.Compare(a.RecordID(), b.RecordID())
		},
	}
}

// Window applies offset and limit to an already ordered slice. Limit 0 is unbounded.
func Window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
