package directory

import (
	"context"
	"sync"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

var _ repo[domain.Role] = &repoMock[domain.Role]{}

type repoMock[T any] struct {
	FetchAllFunc    func(ctx context.Context, f query.Fetch[T]) ([]T, error)
	CountFunc       func(ctx context.Context, where query.Predicate[T]) (int, error)
	GetByIDFunc     func(ctx context.Context, id int64) (T, error)
	CreateFunc      func(ctx context.Context, v T) (int64, error)
	UpdateFunc      func(ctx context.Context, v T) error
	ParentLinksFunc func(ctx context.Context) (hierarchy.Links, error)

	calls struct {
		FetchAll []struct {
			Ctx context.Context
			F   query.Fetch[T]
		}
		Count []struct {
			Ctx   context.Context
			Where query.Predicate[T]
		}
		GetByID []struct {
			Ctx context.Context
			ID  int64
		}
		Create []struct {
			Ctx context.Context
			V   T
		}
		Update []struct {
			Ctx context.Context
			V   T
		}
		ParentLinks []struct {
			Ctx context.Context
		}
	}
	lockFetchAll    sync.RWMutex
	lockCount       sync.RWMutex
	lockGetByID     sync.RWMutex
	lockCreate      sync.RWMutex
	lockUpdate      sync.RWMutex
	lockParentLinks sync.RWMutex
}

func (mock *repoMock[T]) FetchAll(ctx context.Context, f query.Fetch[T]) ([]T, error) {
	if mock.FetchAllFunc == nil {
		panic("repoMock.FetchAllFunc: method is nil but repo.FetchAll was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   query.Fetch[T]
	}{Ctx: ctx, F: f}
	mock.lockFetchAll.Lock()
	mock.calls.FetchAll = append(mock.calls.FetchAll, callInfo)
	mock.lockFetchAll.Unlock()
	return mock.FetchAllFunc(ctx, f)
}

func (mock *repoMock[T]) FetchAllCalls() []struct {
	Ctx context.Context
	F   query.Fetch[T]
} {
	mock.lockFetchAll.RLock()
	calls := mock.calls.FetchAll
	mock.lockFetchAll.RUnlock()
	return calls
}

func (mock *repoMock[T]) Count(ctx context.Context, where query.Predicate[T]) (int, error) {
	if mock.CountFunc == nil {
		panic("repoMock.CountFunc: method is nil but repo.Count was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Where query.Predicate[T]
	}{Ctx: ctx, Where: where}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, callInfo)
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, where)
}

func (mock *repoMock[T]) CountCalls() []struct {
	Ctx   context.Context
	Where query.Predicate[T]
} {
	mock.lockCount.RLock()
	calls := mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}

func (mock *repoMock[T]) GetByID(ctx context.Context, id int64) (T, error) {
	if mock.GetByIDFunc == nil {
		panic("repoMock.GetByIDFunc: method is nil but repo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  int64
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *repoMock[T]) GetByIDCalls() []struct {
	Ctx context.Context
	ID  int64
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *repoMock[T]) Create(ctx context.Context, v T) (int64, error) {
	if mock.CreateFunc == nil {
		panic("repoMock.CreateFunc: method is nil but repo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		V   T
	}{Ctx: ctx, V: v}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, v)
}

func (mock *repoMock[T]) CreateCalls() []struct {
	Ctx context.Context
	V   T
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *repoMock[T]) Update(ctx context.Context, v T) error {
	if mock.UpdateFunc == nil {
		panic("repoMock.UpdateFunc: method is nil but repo.Update was just called")
	}
	callInfo := struct {
		Ctx context.Context
		V   T
	}{Ctx: ctx, V: v}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, v)
}

func (mock *repoMock[T]) UpdateCalls() []struct {
	Ctx context.Context
	V   T
} {
	mock.lockUpdate.RLock()
	calls := mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}

func (mock *repoMock[T]) ParentLinks(ctx context.Context) (hierarchy.Links, error) {
	if mock.ParentLinksFunc == nil {
		panic("repoMock.ParentLinksFunc: method is nil but repo.ParentLinks was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockParentLinks.Lock()
	mock.calls.ParentLinks = append(mock.calls.ParentLinks, callInfo)
	mock.lockParentLinks.Unlock()
	return mock.ParentLinksFunc(ctx)
}

func (mock *repoMock[T]) ParentLinksCalls() []struct {
	Ctx context.Context
} {
	mock.lockParentLinks.RLock()
	calls := mock.calls.ParentLinks
	mock.lockParentLinks.RUnlock()
	return calls
}
