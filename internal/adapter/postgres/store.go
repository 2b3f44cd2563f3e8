package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

// builder renders squirrel statements with $n placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// BaseRow holds the columns every directory table shares. Entity rows embed it.
type BaseRow struct {
	ID             int64     `db:"id"`
	ParentID       *int64    `db:"parent_id"`
	IsActive       bool      `db:"is_active"`
	CreatedBy      string    `db:"created_by"`
	CreationDate   time.Time `db:"creation_date"`
	LastModifiedBy string    `db:"last_modified_by"`
	ModifiedDate   time.Time `db:"modified_date"`
}

// Base converts the row into the domain Base.
func (r BaseRow) Base() domain.Base {
	return domain.Base{
		ID:       r.ID,
		ParentID: r.ParentID,
		IsActive: r.IsActive,
		Audit: domain.Audit{
			CreatedBy:      r.CreatedBy,
			CreationDate:   r.CreationDate,
			LastModifiedBy: r.LastModifiedBy,
			ModifiedDate:   r.ModifiedDate,
		},
	}
}

// Table describes how one entity type maps onto SQL.
type Table[T any, R any] struct {
	// Entity is used in error messages.
	Entity string
	// Name is the bare table name used by writes; Alias qualifies it in reads.
	Name  string
	Alias string
	// Select lists the own columns read into R, qualified by Alias.
	Select []string
	// Joins are LEFT JOINed on every read; JoinSelect lists their columns.
	Joins      []string
	JoinSelect []string
	// Columns maps query field names to SQL expressions. Fields missing here
	// cannot be filtered, searched or ordered by in SQL.
	Columns map[string]string
	// Values returns the entity-specific column values of a write.
	Values func(v T) map[string]any
	// Map builds the entity from a row, populating only the included relations.
	Map func(row R, includes []string) T
}

// Store is a generic directory repository over one table.
type Store[T domain.Directory[T], R any] struct {
	q     Querier
	table Table[T, R]
	text  map[string]bool
}

// NewStore creates a Store. q is used when ctx carries no transaction.
func NewStore[T domain.Directory[T], R any](q Querier, table Table[T, R]) *Store[T, R] {
	text := make(map[string]bool)
	for _, name := range query.SchemaOf[T]().FieldNames() {
		text[name] = true
	}
	return &Store[T, R]{q: q, table: table, text: text}
}

// Column implements query.Columns.
func (s *Store[T, R]) Column(field string) (string, bool) {
	col, ok := s.table.Columns[field]
	return col, ok
}

func (s *Store[T, R]) col(name string) string {
	return s.table.Alias + "." + name
}

func (s *Store[T, R]) selectBuilder(columns ...string) sq.SelectBuilder {
	b := builder.Select(columns...).From(s.table.Name + " " + s.table.Alias)
	for _, j := range s.table.Joins {
		b = b.LeftJoin(j)
	}
	return b
}

func (s *Store[T, R]) rowColumns() []string {
	cols := make([]string, 0, len(s.table.Select)+len(s.table.JoinSelect))
	cols = append(cols, s.table.Select...)
	return append(cols, s.table.JoinSelect...)
}

// ---------------------------------------------------------------------------
// Grid reads
// ---------------------------------------------------------------------------

// FetchAll implements query.Store.
func (s *Store[T, R]) FetchAll(ctx context.Context, f query.Fetch[T]) ([]T, error) {
	cond, err := f.Where.ToSQL(s)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.table.Entity, err)
	}

	orderCol, ok := s.Column(f.Order.Column)
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w: %q", s.table.Entity, query.ErrUnknownColumn, f.Order.Column)
	}
	if s.text[f.Order.Column] {
		orderCol = "LOWER(COALESCE(" + orderCol + ", ''))"
	}
	dir := "ASC"
	if f.Order.Desc {
		dir = "DESC"
	}

	b := s.selectBuilder(s.rowColumns()...).OrderBy(orderCol + " " + dir)
	if f.Order.Column != query.FieldID {
		b = b.OrderBy(s.col("id") + " ASC")
	}
	if cond != nil {
		b = b.Where(cond)
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fetch %s: %w", s.table.Entity, err)
	}

	var rows []R
	if err := pgxscan.Select(ctx, QuerierFromCtx(ctx, s.q), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.table.Entity, err)
	}

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = s.table.Map(row, f.Includes)
	}
	return out, nil
}

// Count implements query.Store.
func (s *Store[T, R]) Count(ctx context.Context, where query.Predicate[T]) (int, error) {
	cond, err := where.ToSQL(s)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Entity, err)
	}

	b := s.selectBuilder("COUNT(*)")
	if cond != nil {
		b = b.Where(cond)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", s.table.Entity, err)
	}

	var n int
	if err := QuerierFromCtx(ctx, s.q).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Entity, err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Single-record reads and writes
// ---------------------------------------------------------------------------

// GetByID returns the record with every relation loaded.
// Returns domain.ErrNotFound when it does not exist.
func (s *Store[T, R]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T

	sql, args, err := s.selectBuilder(s.rowColumns()...).
		Where(sq.Eq{s.col("id"): id}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("build get %s: %w", s.table.Entity, err)
	}

	var row R
	if err := pgxscan.Get(ctx, QuerierFromCtx(ctx, s.q), &row, sql, args...); err != nil {
		return zero, mapError(err, s.table.Entity, id)
	}

	var includes []string
	for _, r := range query.SchemaOf[T]().Relations {
		includes = append(includes, r.Name)
	}
	return s.table.Map(row, includes), nil
}

func (s *Store[T, R]) values(v T) map[string]any {
	b := v.BaseInfo()
	vals := map[string]any{
		"parent_id":        b.ParentID,
		"is_active":        b.IsActive,
		"created_by":       b.CreatedBy,
		"creation_date":    b.CreationDate,
		"last_modified_by": b.LastModifiedBy,
		"modified_date":    b.ModifiedDate,
	}
	for k, val := range s.table.Values(v) {
		vals[k] = val
	}
	return vals
}

// Create inserts v and returns the generated id. v's own id is ignored.
func (s *Store[T, R]) Create(ctx context.Context, v T) (int64, error) {
	sql, args, err := builder.Insert(s.table.Name).
		SetMap(s.values(v)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert %s: %w", s.table.Entity, err)
	}

	var id int64
	if err := QuerierFromCtx(ctx, s.q).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, mapError(err, s.table.Entity, 0)
	}
	return id, nil
}

// Update overwrites every column of the record identified by v's id.
// Returns domain.ErrNotFound when no row was updated.
func (s *Store[T, R]) Update(ctx context.Context, v T) error {
	id := v.RecordID()

	sql, args, err := builder.Update(s.table.Name).
		SetMap(s.values(v)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", s.table.Entity, err)
	}

	tag, err := QuerierFromCtx(ctx, s.q).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, s.table.Entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", s.table.Entity, id, domain.ErrNotFound)
	}
	return nil
}

// ParentLinks returns the parent link of every active record. Inside a
// transaction the rows are locked FOR SHARE so the hierarchy cannot change
// under a cycle check.
func (s *Store[T, R]) ParentLinks(ctx context.Context) (hierarchy.Links, error) {
	b := builder.Select("id", "parent_id").
		From(s.table.Name).
		Where(sq.Eq{"is_active": true})
	if InTx(ctx) {
		b = b.Suffix("FOR SHARE")
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build parent links %s: %w", s.table.Entity, err)
	}

	var rows []struct {
		ID       int64  `db:"id"`
		ParentID *int64 `db:"parent_id"`
	}
	if err := pgxscan.Select(ctx, QuerierFromCtx(ctx, s.q), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("parent links %s: %w", s.table.Entity, err)
	}

	links := make(hierarchy.Links, len(rows))
	for _, r := range rows {
		links[r.ID] = r.ParentID
	}
	return links, nil
}

// ---------------------------------------------------------------------------
// Table definition helpers
// ---------------------------------------------------------------------------

// BaseSelect returns the shared base columns qualified by alias.
func BaseSelect(alias string) []string {
	names := []string{"id", "parent_id", "is_active", "created_by", "creation_date", "last_modified_by", "modified_date"}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = alias + "." + n
	}
	return out
}

// BaseColumns returns the field→column mapping of the shared base fields.
func BaseColumns(alias string) map[string]string {
	return map[string]string{
		query.FieldID:     alias + ".id",
		query.FieldActive: alias + ".is_active",
		"parentId":        alias + ".parent_id",
		"createdBy":       alias + ".created_by",
		"creationDate":    alias + ".creation_date",
		"lastModifiedBy":  alias + ".last_modified_by",
		"modifiedDate":    alias + ".modified_date",
	}
}

// Columns maps fields to alias-qualified columns and merges them into dst.
// Field and column pairs alternate in pairs.
func Columns(dst map[string]string, alias string, pairs ...string) map[string]string {
	for i := 0; i+1 < len(pairs); i += 2 {
		dst[pairs[i]] = alias + "." + pairs[i+1]
	}
	return dst
}

// JoinSelect selects columns of a joined alias as prefix_column.
func JoinSelect(alias, prefix string, columns ...string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fmt.Sprintf("%s.%s AS %s_%s", alias, c, prefix, c)
	}
	return out
}

// Included reports whether name is in includes, ignoring case.
func Included(includes []string, name string) bool {
	for _, inc := range includes {
		if strings.EqualFold(inc, name) {
			return true
		}
	}
	return false
}
