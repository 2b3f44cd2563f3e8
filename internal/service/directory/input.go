package directory

import (
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

// ListInput holds the parameters of a grid request. Zero PageNumber and
// PageSize select the first page and the default size.
type ListInput[T any] struct {
	Filter        query.Predicate[T]
	Includes      []string
	Status        string
	SortColumn    string
	SortDirection string
	Search        string
	PageNumber    int
	PageSize      int
}

// ListResult is one page of a grid together with the filtered total.
type ListResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// TreeInput holds the parameters of a tree view.
type TreeInput struct {
	Status   string
	Search   string
	Expanded hierarchy.ExpandState
	// ExpandAll ignores Expanded and opens every node with children.
	ExpandAll bool
}
