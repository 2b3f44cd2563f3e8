// Package query implements the generic grid query engine: per-type field
// registration, composable predicates, dynamic ordering and paging over any
// record store.
package query

import (
	"cmp"
	"strings"
	"time"
)

// Reserved field names understood by every store.
const (
	FieldID     = "id"
	FieldActive = "isActive"
)

// Record is the capability every queryable entity exposes.
type Record interface {
	RecordID() int64
	Active() bool
}

// Entity is a Record that describes its own searchable and sortable surface.
// QuerySchema is called on the zero value, so it must not depend on receiver state.
type Entity[T any] interface {
	Record
	QuerySchema() Schema[T]
}

// Field is a named text accessor on T.
type Field[T any] struct {
	Name string
	Get  func(T) string
}

// Text declares a searchable text field.
func Text[T any](name string, get func(T) string) Field[T] {
	return Field[T]{Name: name, Get: get}
}

// Relation is a related-entity reference of T. Its fields are the related
// type's own text fields qualified as "name.field"; relations of the related
// type are never followed.
type Relation[T any] struct {
	Name   string
	Fields []Field[T]
}

// Relate builds a Relation from an accessor returning the related record
// (nil when absent or not loaded) and the related type's own text fields.
func Relate[T, R any](name string, get func(T) *R, fields []Field[R]) Relation[T] {
	qualified := make([]Field[T], 0, len(fields))
	for _, f := range fields {
		qualified = append(qualified, Field[T]{
			Name: name + "." + f.Name,
			Get: func(v T) string {
				r := get(v)
				if r == nil {
					return ""
				}
				return f.Get(*r)
			},
		})
	}
	return Relation[T]{Name: name, Fields: qualified}
}

// SortKey is a named ordering over T.
type SortKey[T any] struct {
	Name    string
	Compare func(a, b T) int
}

// SortBy declares a sort key over an ordered value.
func SortBy[T any, V cmp.Ordered](name string, get func(T) V) SortKey[T] {
	return SortKey[T]{Name: name, Compare: func(a, b T) int { return cmp.Compare(get(a), get(b)) }}
}

// SortByTime declares a sort key over a timestamp.
func SortByTime[T any](name string, get func(T) time.Time) SortKey[T] {
	return SortKey[T]{Name: name, Compare: func(a, b T) int { return get(a).Compare(get(b)) }}
}

// SortByBool declares a sort key where false orders before true.
func SortByBool[T any](name string, get func(T) bool) SortKey[T] {
	return SortKey[T]{Name: name, Compare: func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}}
}

// Schema describes T to the engine: its own text fields, its one-level
// relations and any non-text sort keys.
type Schema[T any] struct {
	Text      []Field[T]
	Relations []Relation[T]
	Sort      []SortKey[T]
}

// SchemaOf returns the schema registered by T.
func SchemaOf[T Entity[T]]() Schema[T] {
	var zero T
	return zero.QuerySchema()
}

// SearchFields returns own text fields followed by every relation's
// qualified fields, in declaration order.
func (s Schema[T]) SearchFields() []Field[T] {
	out := make([]Field[T], 0, len(s.Text))
	out = append(out, s.Text...)
	for _, r := range s.Relations {
		out = append(out, r.Fields...)
	}
	return out
}

// FieldNames returns the names of all searchable fields.
func (s Schema[T]) FieldNames() []string {
	fields := s.SearchFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Relation looks up a relation by name, ignoring case.
func (s Schema[T]) Relation(name string) (Relation[T], bool) {
	for _, r := range s.Relations {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Relation[T]{}, false
}

// Order resolves a caller-supplied column name to a sort key. Declared sort
// keys win over text fields of the same name. The identity column is always
// resolvable.
func (s Schema[T]) Order(column string, byID func(T) int64) (SortKey[T], bool) {
	column = strings.TrimSpace(column)
	if strings.EqualFold(column, FieldID) {
		return SortBy(FieldID, byID), true
	}
	for _, k := range s.Sort {
		if strings.EqualFold(k.Name, column) {
			return k, true
		}
	}
	for _, f := range s.SearchFields() {
		if strings.EqualFold(f.Name, column) {
			get := f.Get
			return SortBy(f.Name, func(v T) string { return strings.ToLower(get(v)) }), true
		}
	}
	return SortKey[T]{}, false
}
