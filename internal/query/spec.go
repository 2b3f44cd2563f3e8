package query

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidPage is returned for a page number or page size below 1.
	ErrInvalidPage = errors.New("invalid page")
	// ErrUntranslatable is returned by a store that cannot express a predicate.
	ErrUntranslatable = errors.New("predicate not supported by store")
	// ErrUnknownColumn is returned by a store that cannot order by a column.
	ErrUnknownColumn = errors.New("unknown column")
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection treats anything other than "desc" as ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Spec is the per-call query specification of a grid request.
type Spec[T any] struct {
	Filter     Predicate[T]
	Includes   []string
	Status     Status
	SortColumn string
	Direction  Direction
	Search     string
	PageNumber int
	PageSize   int
}

// Offset returns the number of rows to skip.
func (s Spec[T]) Offset() int {
	return (s.PageNumber - 1) * s.PageSize
}

// Order is a resolved ordering handed to a store. Column is the field name;
// Compare implements the same ordering for in-memory stores.
type Order[T any] struct {
	Column  string
	Desc    bool
	Compare func(a, b T) int
}

// Fetch is one fetch request against a store. Limit 0 means unbounded.
type Fetch[T any] struct {
	Where    Predicate[T]
	Order    Order[T]
	Includes []string
	Offset   int
	Limit    int
}

// Store is the record source the engine runs against.
type Store[T any] interface {
	FetchAll(ctx context.Context, f Fetch[T]) ([]T, error)
	Count(ctx context.Context, where Predicate[T]) (int, error)
}
