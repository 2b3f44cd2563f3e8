package query

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// fieldSeparator joins field values for search. Terms are split on
// whitespace, so a match can never span two fields.
const fieldSeparator = "\n"

// Columns maps field names to store column expressions.
type Columns interface {
	Column(field string) (string, bool)
}

// Predicate is a composable boolean condition over T. It carries an
// in-memory form and, when expressible, a store-side form rendered against
// a Columns mapping.
//
// The zero Predicate matches everything and renders no condition. A
// predicate built with Func has no store-side form; stores reject it with
// ErrUntranslatable.
type Predicate[T any] struct {
	match func(T) bool
	sql   func(Columns) (sq.Sqlizer, error)
}

// Func wraps an in-memory condition.
func Func[T any](fn func(T) bool) Predicate[T] {
	return Predicate[T]{match: fn}
}

// Eq matches records whose field equals value.
func Eq[T any, V comparable](field string, get func(T) V, value V) Predicate[T] {
	return Predicate[T]{
		match: func(v T) bool { return get(v) == value },
		sql: func(cols Columns) (sq.Sqlizer, error) {
			col, ok := cols.Column(field)
			if !ok {
				return nil, fmt.Errorf("%w: field %q", ErrUntranslatable, field)
			}
			return sq.Eq{col: value}, nil
		},
	}
}

// IsZero reports whether p imposes no constraint.
func (p Predicate[T]) IsZero() bool {
	return p.match == nil && p.sql == nil
}

// Match evaluates p against v.
func (p Predicate[T]) Match(v T) bool {
	if p.match == nil {
		return true
	}
	return p.match(v)
}

// ToSQL renders p against cols. A nil Sqlizer with a nil error means no
// condition.
func (p Predicate[T]) ToSQL(cols Columns) (sq.Sqlizer, error) {
	if p.IsZero() {
		return nil, nil
	}
	if p.sql == nil {
		return nil, ErrUntranslatable
	}
	return p.sql(cols)
}

// And combines predicates with logical AND. Zero predicates are skipped.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	parts := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if !p.IsZero() {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return Predicate[T]{}
	case 1:
		return parts[0]
	}

	return Predicate[T]{
		match: func(v T) bool {
			for _, p := range parts {
				if !p.Match(v) {
					return false
				}
			}
			return true
		},
		sql: func(cols Columns) (sq.Sqlizer, error) {
			conj := make(sq.And, 0, len(parts))
			for _, p := range parts {
				s, err := p.ToSQL(cols)
				if err != nil {
					return nil, err
				}
				if s != nil {
					conj = append(conj, s)
				}
			}
			return conj, nil
		},
	}
}

// Status is the grid status filter.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus is lenient: anything unrecognized is StatusAll.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive
	case StatusInactive:
		return StatusInactive
	default:
		return StatusAll
	}
}

// StatusPredicate restricts on the active flag. StatusAll yields the zero Predicate.
func StatusPredicate[T Record](status Status) Predicate[T] {
	var want bool
	switch ParseStatus(string(status)) {
	case StatusActive:
		want = true
	case StatusInactive:
		want = false
	default:
		return Predicate[T]{}
	}
	return Eq(FieldActive, func(v T) bool { return v.Active() }, want)
}

// SearchTerms trims, lower-cases and splits raw on whitespace.
func SearchTerms(raw string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
}

// Search matches records where every term is a substring of the
// concatenation of all schema search fields. No terms or no fields yields
// the zero Predicate.
func Search[T any](schema Schema[T], raw string) Predicate[T] {
	terms := SearchTerms(raw)
	fields := schema.SearchFields()
	if len(terms) == 0 || len(fields) == 0 {
		return Predicate[T]{}
	}

	return Predicate[T]{
		match: func(v T) bool {
			values := make([]string, len(fields))
			for i, f := range fields {
				values[i] = f.Get(v)
			}
			haystack := strings.ToLower(strings.Join(values, fieldSeparator))
			for _, term := range terms {
				if !strings.Contains(haystack, term) {
					return false
				}
			}
			return true
		},
		sql: func(cols Columns) (sq.Sqlizer, error) {
			exprs := make([]string, 0, len(fields))
			for _, f := range fields {
				col, ok := cols.Column(f.Name)
				if !ok {
					return nil, fmt.Errorf("%w: search field %q", ErrUntranslatable, f.Name)
				}
				exprs = append(exprs, col)
			}
			haystack := "LOWER(CONCAT_WS(E'\\n', " + strings.Join(exprs, ", ") + "))"

			conj := make(sq.And, 0, len(terms))
			for _, term := range terms {
				conj = append(conj, sq.Expr(haystack+` LIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%"))
			}
			return conj, nil
		},
	}
}

// Build combines the status filter, an optional custom filter and the
// search string into one predicate.
func Build[T Record](schema Schema[T], status Status, custom Predicate[T], search string) Predicate[T] {
	return And(custom, StatusPredicate[T](status), Search(schema, search))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// isUntranslatable reports whether err is a store rejecting a predicate.
func isUntranslatable(err error) bool {
	return errors.Is(err, ErrUntranslatable)
}
