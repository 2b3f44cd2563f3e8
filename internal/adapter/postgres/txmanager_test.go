package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/erp-backend/internal/adapter/postgres"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectationsMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Commit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(readCommitted)
	mock.ExpectExec(`UPDATE companies`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if !postgres.InTx(ctx) {
			t.Fatal("expected transaction in context")
		}
		_, err := postgres.QuerierFromCtx(ctx, mock).Exec(ctx, `UPDATE companies SET name = 'x'`)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	sentinel := errors.New("business logic error")
	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	expectationsMet(t, mock)
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	tm := postgres.NewTxManager(mock)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}
		expectationsMet(t, mock)
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		panic("test panic")
	})
}

func TestRunInTx_BeginFails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(readCommitted).WillReturnError(errors.New("no connection"))

	tm := postgres.NewTxManager(mock)
	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	if err == nil || called {
		t.Fatalf("expected begin error without calling fn, got err=%v called=%v", err, called)
	}
	expectationsMet(t, mock)
}

func TestRunInTx_NestedReusesOuter(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(readCommitted)
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return tm.RunInTx(ctx, func(inner context.Context) error {
			if postgres.QuerierFromCtx(inner, mock) != postgres.QuerierFromCtx(ctx, mock) {
				t.Error("nested call must see the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestQuerierFromCtx_NoTx(t *testing.T) {
	mock := newMock(t)
	if got := postgres.QuerierFromCtx(context.Background(), mock); got != postgres.Querier(mock) {
		t.Fatal("expected fallback querier outside a transaction")
	}
}
