package directory

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/heartmarshall/erp-backend/internal/adapter/memory"
	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
	"github.com/heartmarshall/erp-backend/pkg/ctxutil"
)

//go:generate moq -out repo_mock_test.go -pkg directory . repo
//go:generate moq -out tx_manager_mock_test.go -pkg directory . txManager

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var testGrid = GridConfig{DefaultPageSize: 20, MaxPageSize: 50}

// newRoleService creates a role Service over a fresh memory store.
func newRoleService(t *testing.T) (*Service[domain.Role], *memory.Store[domain.Role]) {
	t.Helper()
	stores := memory.NewStores()
	svc := NewService[domain.Role](slog.Default(), domain.KindRole, stores.Roles, memory.NewTxManager(), testGrid)
	svc.now = func() time.Time { return fixedNow }
	return svc, stores.Roles
}

// defaultTxMock returns a txManagerMock that simply calls the function with the same context.
func defaultTxMock() *txManagerMock {
	return &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

func createRole(t *testing.T, svc *Service[domain.Role], name string, parentID *int64) domain.Role {
	t.Helper()
	r, err := svc.Create(context.Background(), domain.Role{
		Base: domain.Base{ParentID: parentID},
		Name: name,
		Code: name,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return r
}

func assertCircular(t *testing.T, err error) {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "parentId" || verr.Errors[0].Message != domain.MsgCircular {
		t.Fatalf("unexpected validation error: %v", verr)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_PageSizeDefaultsAndClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     ListInput[domain.Role]
		wantPage  int
		wantSize  int
		wantLimit int
	}{
		{name: "defaults", input: ListInput[domain.Role]{}, wantPage: 1, wantSize: 20, wantLimit: 20},
		{name: "clamped", input: ListInput[domain.Role]{PageNumber: 2, PageSize: 500}, wantPage: 2, wantSize: 50, wantLimit: 50},
		{name: "explicit", input: ListInput[domain.Role]{PageNumber: 3, PageSize: 5}, wantPage: 3, wantSize: 5, wantLimit: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repoMock := &repoMock[domain.Role]{
				CountFunc: func(ctx context.Context, where query.Predicate[domain.Role]) (int, error) {
					return 1000, nil
				},
				FetchAllFunc: func(ctx context.Context, f query.Fetch[domain.Role]) ([]domain.Role, error) {
					return []domain.Role{}, nil
				},
			}
			svc := NewService[domain.Role](slog.Default(), domain.KindRole, repoMock, defaultTxMock(), testGrid)

			res, err := svc.List(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.PageNumber != tt.wantPage || res.PageSize != tt.wantSize || res.TotalCount != 1000 {
				t.Errorf("result: got %+v", res)
			}
			calls := repoMock.FetchAllCalls()
			if len(calls) != 1 {
				t.Fatalf("FetchAll calls: got %d, want 1", len(calls))
			}
			if calls[0].F.Limit != tt.wantLimit || calls[0].F.Offset != (tt.wantPage-1)*tt.wantSize {
				t.Errorf("fetch window: got offset=%d limit=%d", calls[0].F.Offset, calls[0].F.Limit)
			}
		})
	}
}

func TestList_NegativePageRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	_, err := svc.List(context.Background(), ListInput[domain.Role]{PageNumber: -1})
	if !errors.Is(err, query.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestList_StatusAndSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newRoleService(t)
	admin := createRole(t, svc, "Admin", nil)
	createRole(t, svc, "Sales Manager", &admin.ID)
	old := createRole(t, svc, "Sales Intern", nil)
	if _, err := svc.Deactivate(ctx, old.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := svc.List(ctx, ListInput[domain.Role]{Status: "active"})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	inactive, err := svc.List(ctx, ListInput[domain.Role]{Status: "inactive"})
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if active.TotalCount != 2 || inactive.TotalCount != 1 {
		t.Errorf("status partition: active=%d inactive=%d", active.TotalCount, inactive.TotalCount)
	}

	// "admin" matches the manager through its parent's name only.
	res, err := svc.List(ctx, ListInput[domain.Role]{Search: "sales admin"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.TotalCount != 1 || res.Items[0].Name != "Sales Manager" {
		t.Errorf("search: got %+v", res.Items)
	}
}

func TestList_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	repoMock := &repoMock[domain.Role]{
		CountFunc: func(ctx context.Context, where query.Predicate[domain.Role]) (int, error) {
			return 0, boom
		},
	}
	svc := NewService[domain.Role](slog.Default(), domain.KindRole, repoMock, defaultTxMock(), testGrid)

	_, err := svc.List(context.Background(), ListInput[domain.Role]{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

func TestTree_ExpandState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newRoleService(t)
	r1 := createRole(t, svc, "Root", nil)
	r2 := createRole(t, svc, "Middle", &r1.ID)
	createRole(t, svc, "Leaf", &r2.ID)

	rows, err := svc.Tree(ctx, TreeInput{Expanded: hierarchy.ExpandState{r1.ID: true, r2.ID: false}})
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(rows) != 2 || rows[0].Record.ID != r1.ID || rows[1].Record.ID != r2.ID {
		t.Fatalf("rows: got %+v", rows)
	}
	if rows[1].Depth != 1 || !rows[1].HasChildren || rows[1].Expanded {
		t.Errorf("middle row: got %+v", rows[1])
	}

	all, err := svc.Tree(ctx, TreeInput{ExpandAll: true})
	if err != nil {
		t.Fatalf("tree expand all: %v", err)
	}
	if len(all) != 3 || all[2].Depth != 2 {
		t.Errorf("expand all: got %+v", all)
	}
}

func TestTree_FilteredParentBecomesRoot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newRoleService(t)
	root := createRole(t, svc, "Root", nil)
	child := createRole(t, svc, "Child", &root.ID)
	if _, err := svc.Deactivate(ctx, root.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := svc.Tree(ctx, TreeInput{Status: "active"})
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(rows) != 1 || rows[0].Record.ID != child.ID || rows[0].Depth != 0 {
		t.Errorf("rows: got %+v", rows)
	}
}

// ---------------------------------------------------------------------------
// Create / Update
// ---------------------------------------------------------------------------

func TestCreate_StampsAudit(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	ctx := ctxutil.WithActor(context.Background(), "alice")

	r, err := svc.Create(ctx, domain.Role{
		Base: domain.Base{ID: 99, IsActive: false, Audit: domain.Audit{CreatedBy: "mallory"}},
		Name: "  Finance   Team ",
		Code: "fin team",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != 1 || !r.IsActive {
		t.Errorf("base: got %+v", r.Base)
	}
	if r.CreatedBy != "alice" || r.LastModifiedBy != "alice" || !r.CreationDate.Equal(fixedNow) {
		t.Errorf("audit: got %+v", r.Audit)
	}
	if r.Name != "Finance Team" || r.Code != "FIN-TEAM" {
		t.Errorf("normalized fields: got name=%q code=%q", r.Name, r.Code)
	}
}

func TestCreate_SystemActor(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	r := createRole(t, svc, "Ops", nil)
	if r.CreatedBy != ctxutil.SystemActor {
		t.Errorf("created by: got %q, want %q", r.CreatedBy, ctxutil.SystemActor)
	}
}

func TestCreate_ValidationSkipsTx(t *testing.T) {
	t.Parallel()

	repoMock := &repoMock[domain.Role]{}
	txMock := defaultTxMock()
	svc := NewService[domain.Role](slog.Default(), domain.KindRole, repoMock, txMock, testGrid)

	_, err := svc.Create(context.Background(), domain.Role{Name: "", Code: ""})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("field errors: got %v", verr.Errors)
	}
	if len(txMock.RunInTxCalls()) != 0 {
		t.Error("transaction must not start for invalid input")
	}
}

func TestCreate_ParentChecks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newRoleService(t)
	retired := createRole(t, svc, "Retired", nil)
	if _, err := svc.Deactivate(ctx, retired.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tests := []struct {
		name     string
		parentID int64
		wantMsg  string
	}{
		{name: "missing parent", parentID: 42, wantMsg: "does not exist"},
		{name: "inactive parent", parentID: retired.ID, wantMsg: "is inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid := tt.parentID
			_, err := svc.Create(ctx, domain.Role{Base: domain.Base{ParentID: &pid}, Name: "X", Code: "X"})
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Errors[0].Field != "parentId" || verr.Errors[0].Message != tt.wantMsg {
				t.Errorf("field error: got %+v", verr.Errors[0])
			}
		})
	}

	n, _ := store.Count(ctx, query.Predicate[domain.Role]{})
	if n != 1 {
		t.Errorf("rejected creates must not write: %d records", n)
	}
}

func TestUpdate_KeepsCreationAudit(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	r := createRole(t, svc, "Ops", nil)

	later := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return later }
	ctx := ctxutil.WithActor(context.Background(), "bob")

	got, err := svc.Update(ctx, r.ID, domain.Role{
		Base:        domain.Base{IsActive: false, Audit: domain.Audit{CreatedBy: "mallory"}},
		Name:        "Operations",
		Code:        "OPS",
		Description: "Runs things",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Operations" || got.Description != "Runs things" {
		t.Errorf("fields: got %+v", got)
	}
	if !got.IsActive {
		t.Error("update must not change the active flag")
	}
	if got.CreatedBy != ctxutil.SystemActor || !got.CreationDate.Equal(fixedNow) {
		t.Errorf("creation audit changed: %+v", got.Audit)
	}
	if got.LastModifiedBy != "bob" || !got.ModifiedDate.Equal(later) {
		t.Errorf("modification audit: %+v", got.Audit)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	_, err := svc.Update(context.Background(), 7, domain.Role{Name: "X", Code: "X"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_RejectsCycle(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	a := createRole(t, svc, "A", nil)
	b := createRole(t, svc, "B", &a.ID)

	_, err := svc.Update(context.Background(), a.ID, domain.Role{Base: domain.Base{ParentID: &b.ID}, Name: "A", Code: "A"})
	assertCircular(t, err)
}

// ---------------------------------------------------------------------------
// SetParent
// ---------------------------------------------------------------------------

func TestSetParent_RejectsCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newRoleService(t)
	a := createRole(t, svc, "A", nil)
	b := createRole(t, svc, "B", &a.ID)
	c := createRole(t, svc, "C", &b.ID)

	_, err := svc.SetParent(ctx, a.ID, &c.ID)
	assertCircular(t, err)

	stored, _ := store.Lookup(a.ID)
	if stored.ParentID != nil {
		t.Errorf("rejected parent was written: %v", *stored.ParentID)
	}
}

func TestSetParent_RejectsSelf(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	a := createRole(t, svc, "A", nil)

	_, err := svc.SetParent(context.Background(), a.ID, &a.ID)
	assertCircular(t, err)
}

func TestSetParent_MovesAndDetaches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newRoleService(t)
	a := createRole(t, svc, "A", nil)
	b := createRole(t, svc, "B", nil)

	moved, err := svc.SetParent(ctx, b.ID, &a.ID)
	if err != nil {
		t.Fatalf("set parent: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != a.ID || moved.Parent == nil || moved.Parent.Name != "A" {
		t.Errorf("moved: got %+v", moved)
	}

	root, err := svc.SetParent(ctx, b.ID, nil)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if root.ParentID != nil || root.Parent != nil {
		t.Errorf("detached: got %+v", root)
	}
}

func TestSetParent_InvalidID(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	zero := int64(0)
	_, err := svc.SetParent(context.Background(), 1, &zero)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Activate / Deactivate
// ---------------------------------------------------------------------------

func TestDeactivate_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repoMock := &repoMock[domain.Role]{
		GetByIDFunc: func(ctx context.Context, id int64) (domain.Role, error) {
			return domain.Role{Base: domain.Base{ID: id}, Name: "Old", Code: "OLD"}, nil
		},
	}
	svc := NewService[domain.Role](slog.Default(), domain.KindRole, repoMock, defaultTxMock(), testGrid)

	got, err := svc.Deactivate(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 3 || got.IsActive {
		t.Errorf("result: got %+v", got)
	}
	if len(repoMock.UpdateCalls()) != 0 {
		t.Error("deactivating an inactive record must not write")
	}
}

func TestActivate_RechecksParentChain(t *testing.T) {
	t.Parallel()

	// Record 1 is inactive with parent 2, and 2 has meanwhile become a
	// descendant of 1.
	two, three := int64(2), int64(3)
	repoMock := &repoMock[domain.Role]{
		GetByIDFunc: func(ctx context.Context, id int64) (domain.Role, error) {
			return domain.Role{Base: domain.Base{ID: id, ParentID: &two}, Name: "A", Code: "A"}, nil
		},
		ParentLinksFunc: func(ctx context.Context) (hierarchy.Links, error) {
			one := int64(1)
			return hierarchy.Links{2: &three, 3: &one}, nil
		},
	}
	svc := NewService[domain.Role](slog.Default(), domain.KindRole, repoMock, defaultTxMock(), testGrid)

	_, err := svc.Activate(context.Background(), 1)
	assertCircular(t, err)
	if len(repoMock.UpdateCalls()) != 0 {
		t.Error("rejected activation must not write")
	}
}

func TestActivate_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ctxutil.WithActor(context.Background(), "carol")
	svc, _ := newRoleService(t)
	a := createRole(t, svc, "A", nil)
	b := createRole(t, svc, "B", &a.ID)

	if _, err := svc.Deactivate(ctx, b.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := svc.Activate(ctx, b.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !got.IsActive || got.LastModifiedBy != "carol" {
		t.Errorf("activated: got %+v", got.Base)
	}
}

func TestGet_WrapsNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newRoleService(t)
	_, err := svc.Get(context.Background(), 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
