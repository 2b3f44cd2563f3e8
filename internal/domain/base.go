package domain

import (
	"time"

	"github.com/heartmarshall/erp-backend/internal/query"
)

// Audit holds the bookkeeping fields every record carries.
type Audit struct {
	CreatedBy      string    `json:"createdBy"`
	CreationDate   time.Time `json:"creationDate"`
	LastModifiedBy string    `json:"lastModifiedBy"`
	ModifiedDate   time.Time `json:"modifiedDate"`
}

// Base is embedded by every directory entity: identity, optional parent of
// the same type, soft-delete flag and audit fields.
type Base struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parentId"`
	IsActive bool   `json:"isActive"`
	Audit
}

func (b Base) RecordID() int64   { return b.ID }
func (b Base) Active() bool      { return b.IsActive }
func (b Base) ParentRef() *int64 { return b.ParentID }
func (b Base) BaseInfo() Base    { return b }

// Directory is the capability set the generic directory service, stores and
// handlers need from an entity type.
type Directory[T any] interface {
	query.Entity[T]
	ParentRef() *int64
	BaseInfo() Base
	// Rebase returns a copy carrying b in place of the embedded Base.
	Rebase(b Base) T
	// Normalize returns a copy with user-entered text cleaned up and
	// loaded relations dropped.
	Normalize() T
	Validate() error
}

// baseSortKeys are the non-text sort keys shared by every entity.
func baseSortKeys[T interface{ BaseInfo() Base }]() []query.SortKey[T] {
	return []query.SortKey[T]{
		query.SortByBool(query.FieldActive, func(v T) bool { return v.BaseInfo().IsActive }),
		query.SortBy("parentId", func(v T) int64 { return derefID(v.BaseInfo().ParentID) }),
		query.SortBy("createdBy", func(v T) string { return v.BaseInfo().CreatedBy }),
		query.SortByTime("creationDate", func(v T) time.Time { return v.BaseInfo().CreationDate }),
		query.SortBy("lastModifiedBy", func(v T) string { return v.BaseInfo().LastModifiedBy }),
		query.SortByTime("modifiedDate", func(v T) time.Time { return v.BaseInfo().ModifiedDate }),
	}
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
