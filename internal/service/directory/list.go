package directory

import (
	"context"
	"fmt"

	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

// List returns one page of the filtered, searched and ordered grid.
func (s *Service[T]) List(ctx context.Context, input ListInput[T]) (ListResult[T], error) {
	pageNumber := input.PageNumber
	if pageNumber == 0 {
		pageNumber = 1
	}
	pageSize := input.PageSize
	switch {
	case pageSize == 0:
		pageSize = s.grid.DefaultPageSize
	case pageSize > s.grid.MaxPageSize:
		pageSize = s.grid.MaxPageSize
	}

	items, total, err := s.engine.Query(ctx, query.Spec[T]{
		Filter:     input.Filter,
		Includes:   input.Includes,
		Status:     query.ParseStatus(input.Status),
		SortColumn: input.SortColumn,
		Direction:  query.ParseDirection(input.SortDirection),
		Search:     input.Search,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	})
	if err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s: %w", s.kind, err)
	}

	return ListResult[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}

// Tree returns the visible rows of the hierarchy. A record whose parent is
// filtered out of the result is shown as a root.
func (s *Service[T]) Tree(ctx context.Context, input TreeInput) ([]hierarchy.Row[T], error) {
	records, err := s.engine.All(ctx, query.Spec[T]{
		Status: query.ParseStatus(input.Status),
		Search: input.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", s.kind, err)
	}

	roots := hierarchy.Build(records)
	state := input.Expanded
	if input.ExpandAll {
		state = hierarchy.ExpandAll(roots)
	}
	return hierarchy.Flatten(roots, state), nil
}

// Get returns the record with its relations loaded.
func (s *Service[T]) Get(ctx context.Context, id int64) (T, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return v, nil
}
