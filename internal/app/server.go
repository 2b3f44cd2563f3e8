package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/erp-backend/internal/auth"
	"github.com/heartmarshall/erp-backend/internal/config"
	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/query"
	"github.com/heartmarshall/erp-backend/internal/service/directory"
	"github.com/heartmarshall/erp-backend/internal/transport/middleware"
	"github.com/heartmarshall/erp-backend/internal/transport/rest"
)

// services holds one directory service per entity.
type services struct {
	companies   *directory.Service[domain.Company]
	departments *directory.Service[domain.Department]
	vendors     *directory.Service[domain.Vendor]
	roles       *directory.Service[domain.Role]
	permissions *directory.Service[domain.Permission]
}

func newServices(cfg config.GridConfig, logger *slog.Logger, b *backend, m *Metrics) services {
	grid := directory.GridConfig{DefaultPageSize: cfg.DefaultPageSize, MaxPageSize: cfg.MaxPageSize}
	hook := query.WithFallbackHook(m.QueryFallback)

	return services{
		companies:   directory.NewService[domain.Company](logger, domain.KindCompany, b.companies, b.tx, grid, hook),
		departments: directory.NewService[domain.Department](logger, domain.KindDepartment, b.departments, b.tx, grid, hook),
		vendors:     directory.NewService[domain.Vendor](logger, domain.KindVendor, b.vendors, b.tx, grid, hook),
		roles:       directory.NewService[domain.Role](logger, domain.KindRole, b.roles, b.tx, grid, hook),
		permissions: directory.NewService[domain.Permission](logger, domain.KindPermission, b.permissions, b.tx, grid, hook),
	}
}

func directoryMounts(svc services, logger *slog.Logger) []rest.Mount {
	return []rest.Mount{
		{Path: "companies", Handler: rest.NewDirectoryHandler[domain.Company](svc.companies, logger,
			rest.ParentFilter[domain.Company](),
		).Routes()},
		{Path: "departments", Handler: rest.NewDirectoryHandler[domain.Department](svc.departments, logger,
			rest.ParentFilter[domain.Department](),
			rest.IDFilter("companyId", "companyId", func(d domain.Department) int64 { return d.CompanyID }),
		).Routes()},
		{Path: "vendors", Handler: rest.NewDirectoryHandler[domain.Vendor](svc.vendors, logger,
			rest.ParentFilter[domain.Vendor](),
			rest.IDFilter("companyId", "companyId", func(v domain.Vendor) int64 { return rest.Ref(v.CompanyID) }),
		).Routes()},
		{Path: "roles", Handler: rest.NewDirectoryHandler[domain.Role](svc.roles, logger,
			rest.ParentFilter[domain.Role](),
		).Routes()},
		{Path: "permissions", Handler: rest.NewDirectoryHandler[domain.Permission](svc.permissions, logger,
			rest.ParentFilter[domain.Permission](),
			rest.IDFilter("roleId", "roleId", func(p domain.Permission) int64 { return rest.Ref(p.RoleID) }),
		).Routes()},
	}
}

// newHandler assembles the HTTP handler. The returned stop func releases
// background resources of the middleware.
func newHandler(cfg *config.Config, logger *slog.Logger, b *backend, m *Metrics) (http.Handler, func()) {
	svc := newServices(cfg.Grid, logger, b, m)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	limiter := middleware.NewRateLimiter(time.Minute)

	var metrics middleware.Middleware
	if cfg.Metrics.Enabled {
		metrics = middleware.Metrics(m)
	}

	rc := rest.RouterConfig{
		Health: rest.NewHealthHandler(b.ping, b.driver, BuildVersion()),
		Global: []middleware.Middleware{
			middleware.RequestID(),
			middleware.Logger(logger),
			metrics,
			middleware.Recovery(logger),
			middleware.CORS(cfg.CORS),
		},
		API: []middleware.Middleware{
			middleware.Auth(jwtManager, cfg.Auth.AnonymousReads),
			limiter.Limit(cfg.Server.WriteRateLimit),
		},
		Directories: directoryMounts(svc, logger),
	}
	if cfg.Metrics.Enabled {
		rc.Metrics = promhttp.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}

	return rest.NewRouter(rc), limiter.Stop
}
