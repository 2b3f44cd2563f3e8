package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
	"github.com/heartmarshall/erp-backend/internal/service/directory"
)

// directoryService is the part of directory.Service the handler uses.
type directoryService[T domain.Directory[T]] interface {
	Kind() domain.EntityKind
	List(ctx context.Context, input directory.ListInput[T]) (directory.ListResult[T], error)
	Tree(ctx context.Context, input directory.TreeInput) ([]hierarchy.Row[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id int64, v T) (T, error)
	SetParent(ctx context.Context, id int64, parentID *int64) (T, error)
	Deactivate(ctx context.Context, id int64) (T, error)
	Activate(ctx context.Context, id int64) (T, error)
}

// ParamFilter turns an id-valued query parameter into a grid filter.
type ParamFilter[T any] struct {
	Param string
	Build func(id int64) query.Predicate[T]
}

// IDFilter filters on a reference field: ?param=<id> keeps records whose
// field equals id.
func IDFilter[T any](param, field string, get func(T) int64) ParamFilter[T] {
	return ParamFilter[T]{
		Param: param,
		Build: func(id int64) query.Predicate[T] { return query.Eq(field, get, id) },
	}
}

// ParentFilter filters on the parent link: ?parentId=<id>.
func ParentFilter[T domain.Directory[T]]() ParamFilter[T] {
	return IDFilter("parentId", "parentId", func(v T) int64 { return Ref(v.ParentRef()) })
}

// Ref dereferences an optional id; unset is 0, which no filter accepts.
func Ref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// DirectoryHandler serves the grid, tree and write endpoints of one entity.
type DirectoryHandler[T domain.Directory[T]] struct {
	svc     directoryService[T]
	filters []ParamFilter[T]
	log     *slog.Logger
}

// NewDirectoryHandler creates a DirectoryHandler. filters lists the extra
// query parameters the list endpoint accepts.
func NewDirectoryHandler[T domain.Directory[T]](svc directoryService[T], logger *slog.Logger, filters ...ParamFilter[T]) *DirectoryHandler[T] {
	return &DirectoryHandler[T]{
		svc:     svc,
		filters: filters,
		log:     logger.With("handler", svc.Kind().String()),
	}
}

// Routes returns the entity's sub-router.
func (h *DirectoryHandler[T]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tree", h.Tree)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Put("/parent", h.SetParent)
		r.Post("/deactivate", h.Deactivate)
		r.Post("/activate", h.Activate)
	})
	return r
}

// List handles GET /.
// Query: status, searchTerm, sortColumn, sortDirection, pageNumber, pageSize,
// include (repeatable or comma separated) and the registered filters.
func (h *DirectoryHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageNumber, err := pageParam(q, "pageNumber")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	pageSize, err := pageParam(q, "pageSize")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	filter, err := h.filter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.List(r.Context(), directory.ListInput[T]{
		Filter:        filter,
		Includes:      listParam(q, "include"),
		Status:        q.Get("status"),
		SortColumn:    q.Get("sortColumn"),
		SortDirection: q.Get("sortDirection"),
		Search:        q.Get("searchTerm"),
		PageNumber:    pageNumber,
		PageSize:      pageSize,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Tree handles GET /tree.
// Query: status, searchTerm, expanded (comma separated ids, or "all").
func (h *DirectoryHandler[T]) Tree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := directory.TreeInput{
		Status: q.Get("status"),
		Search: q.Get("searchTerm"),
	}
	if raw := strings.TrimSpace(q.Get("expanded")); strings.EqualFold(raw, "all") {
		input.ExpandAll = true
	} else {
		state := hierarchy.CollapseAll()
		for _, s := range listParam(q, "expanded") {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "expanded: invalid id "+strconv.Quote(s))
				return
			}
			state[id] = true
		}
		input.Expanded = state
	}

	rows, err := h.svc.Tree(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// Get handles GET /{id}.
func (h *DirectoryHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Create handles POST /.
func (h *DirectoryHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := decodeJSON(r, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.Create(r.Context(), v)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /{id}.
func (h *DirectoryHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var v T
	if err := decodeJSON(r, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), id, v)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type setParentRequest struct {
	ParentID *int64 `json:"parentId"`
}

// SetParent handles PUT /{id}/parent. A null parentId detaches the record.
func (h *DirectoryHandler[T]) SetParent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req setParentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.svc.SetParent(r.Context(), id, req.ParentID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Deactivate handles POST /{id}/deactivate.
func (h *DirectoryHandler[T]) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.svc.Deactivate)
}

// Activate handles POST /{id}/activate.
func (h *DirectoryHandler[T]) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.svc.Activate)
}

func (h *DirectoryHandler[T]) setActive(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (T, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := fn(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DirectoryHandler[T]) filter(q url.Values) (query.Predicate[T], error) {
	var preds []query.Predicate[T]
	for _, f := range h.filters {
		raw := strings.TrimSpace(q.Get(f.Param))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return query.Predicate[T]{}, fmt.Errorf("%s: invalid id %q", f.Param, raw)
		}
		preds = append(preds, f.Build(id))
	}
	return query.And(preds...), nil
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}

// pageParam parses an optional paging parameter. Absent is 0, which the
// service reads as its default; a given value must be at least 1.
func pageParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", query.ErrInvalidPage, name)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s=%d", query.ErrInvalidPage, name, n)
	}
	return n, nil
}

// listParam collects a parameter given repeatedly or comma separated.
// It returns nil when the parameter is absent.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
