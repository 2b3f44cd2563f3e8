package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/erp-backend/internal/adapter/memory"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/company"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/department"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/permission"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/role"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/vendor"
	"github.com/heartmarshall/erp-backend/internal/config"
	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/internal/query"
)

type repo[T any] interface {
	query.Store[T]
	GetByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (int64, error)
	Update(ctx context.Context, v T) error
	ParentLinks(ctx context.Context) (hierarchy.Links, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// backend is the selected record store: one repository per entity plus the
// transaction manager they share.
type backend struct {
	driver string
	ping   pinger
	tx     txManager
	close  func()

	companies   repo[domain.Company]
	departments repo[domain.Department]
	vendors     repo[domain.Vendor]
	roles       repo[domain.Role]
	permissions repo[domain.Permission]
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		stores := memory.NewStores()
		return &backend{
			driver:      cfg.Driver,
			ping:        stores,
			tx:          memory.NewTxManager(),
			close:       func() {},
			companies:   stores.Companies,
			departments: stores.Departments,
			vendors:     stores.Vendors,
			roles:       stores.Roles,
			permissions: stores.Permissions,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to database",
			slog.Int("max_conns", int(cfg.MaxConns)),
		)
		return &backend{
			driver:      cfg.Driver,
			ping:        pool,
			tx:          postgres.NewTxManager(pool),
			close:       pool.Close,
			companies:   company.New(pool),
			departments: department.New(pool),
			vendors:     vendor.New(pool),
			roles:       role.New(pool),
			permissions: permission.New(pool),
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
