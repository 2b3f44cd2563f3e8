// Package memory implements the directory stores in process memory.
// It backs the "memory" database driver and service tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

// Lookup returns a stored record by id.
type Lookup[T any] func(id int64) (T, bool)

// Resolver loads one relation into v. self looks up records of the same store.
type Resolver[T any] func(v T, self Lookup[T]) T

type reference[T any] struct {
	field  string
	get    func(T) *int64
	exists func(id int64) bool
}

// Store keeps records of one entity type keyed by id.
type Store[T domain.Directory[T]] struct {
	entity     string
	mu         sync.RWMutex
	rows       map[int64]T
	nextID     int64
	relations  map[string]Resolver[T]
	references []reference[T]
}

// Option configures a Store.
type Option[T domain.Directory[T]] func(*Store[T])

// WithRelation registers how the named relation is loaded.
func WithRelation[T domain.Directory[T]](name string, r Resolver[T]) Option[T] {
	return func(s *Store[T]) { s.relations[strings.ToLower(name)] = r }
}

// WithReference makes writes fail with domain.ErrNotFound when the id
// returned by get is set but unknown to exists.
func WithReference[T domain.Directory[T]](field string, get func(T) *int64, exists func(id int64) bool) Option[T] {
	return func(s *Store[T]) {
		s.references = append(s.references, reference[T]{field: field, get: get, exists: exists})
	}
}

// NewStore creates an empty Store.
func NewStore[T domain.Directory[T]](entity string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entity:    entity,
		rows:      make(map[int64]T),
		relations: make(map[string]Resolver[T]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the stored record without relations.
func (s *Store[T]) Lookup(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.rows[id]
	return v, ok
}

// Exists reports whether id is stored.
func (s *Store[T]) Exists(id int64) bool {
	_, ok := s.Lookup(id)
	return ok
}

// self is the lock-free lookup handed to resolvers; callers hold mu.
func (s *Store[T]) self(id int64) (T, bool) {
	v, ok := s.rows[id]
	return v, ok
}

// sorted returns every row ordered by id. Callers hold mu.
func (s *Store[T]) sorted() []T {
	out := make([]T, 0, len(s.rows))
	for _, v := range s.rows {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(a.RecordID(), b.RecordID()) })
	return out
}

// load resolves the named relations, or all of them when names is nil.
func (s *Store[T]) load(v T, names []string) T {
	if names == nil {
		for _, r := range s.relations {
			v = r(v, s.self)
		}
		return v
	}
	for _, name := range names {
		if r, ok := s.relations[strings.ToLower(name)]; ok {
			v = r(v, s.self)
		}
	}
	return v
}

// filter returns the rows matching where, each carrying the included
// relations only. Relations are always loaded for matching. Callers hold mu.
func (s *Store[T]) filter(where query.Predicate[T], includes []string) []T {
	if includes == nil {
		includes = []string{}
	}
	var out []T
	for _, v := range s.sorted() {
		if where.Match(s.load(v, nil)) {
			out = append(out, s.load(v, includes))
		}
	}
	return out
}

// FetchAll implements query.Store.
func (s *Store[T]) FetchAll(_ context.Context, f query.Fetch[T]) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(f.Where, f.Includes)
	if f.Order.Compare != nil {
		slices.SortStableFunc(matched, f.Order.Compare)
	}
	if matched == nil {
		matched = []T{}
	}
	return query.Window(matched, f.Offset, f.Limit), nil
}

// Count implements query.Store.
func (s *Store[T]) Count(_ context.Context, where query.Predicate[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(where, nil)), nil
}

// GetByID returns the record with every relation loaded.
func (s *Store[T]) GetByID(_ context.Context, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", s.entity, id, domain.ErrNotFound)
	}
	return s.load(v, nil), nil
}

func (s *Store[T]) checkWrite(v T, id int64) error {
	if p := v.ParentRef(); p != nil {
		if *p == id {
			return fmt.Errorf("%s %d: parent is itself: %w", s.entity, id, domain.ErrValidation)
		}
		if _, ok := s.rows[*p]; !ok {
			return fmt.Errorf("%s %d: parent %d: %w", s.entity, id, *p, domain.ErrNotFound)
		}
	}
	for _, ref := range s.references {
		if rid := ref.get(v); rid != nil && !ref.exists(*rid) {
			return fmt.Errorf("%s %d: %s %d: %w", s.entity, id, ref.field, *rid, domain.ErrNotFound)
		}
	}
	return nil
}

// Create stores v under a new id and returns it.
func (s *Store[T]) Create(_ context.Context, v T) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID + 1
	if err := s.checkWrite(v, id); err != nil {
		return 0, err
	}
	s.nextID = id

	b := v.BaseInfo()
	b.ID = id
	s.rows[id] = v.Rebase(b)
	return id, nil
}

// Update replaces the stored record with v's id.
func (s *Store[T]) Update(_ context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := v.RecordID()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("%s %d: %w", s.entity, id, domain.ErrNotFound)
	}
	if err := s.checkWrite(v, id); err != nil {
		return err
	}
	s.rows[id] = v
	return nil
}

// ParentLinks returns the parent link of every active record.
func (s *Store[T]) ParentLinks(_ context.Context) (hierarchy.Links, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make(hierarchy.Links, len(s.rows))
	for id, v := range s.rows {
		if v.Active() {
			links[id] = v.ParentRef()
		}
	}
	return links, nil
}
