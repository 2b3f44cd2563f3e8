// Package permission maps domain.Permission onto the permissions table.
package permission

import (
	postgres "github.com/heartmarshall/erp-backend/internal/adapter/postgres"
	"github.com/heartmarshall/erp-backend/internal/domain"
)

type row struct {
	postgres.BaseRow
	Name        string `db:"name"`
	Code        string `db:"code"`
	Description string `db:"description"`
	RoleID      *int64 `db:"role_id"`

	RoleName        *string `db:"role_name"`
	RoleCode        *string `db:"role_code"`
	RoleDescription *string `db:"role_description"`

	ParentName        *string `db:"parent_name"`
	ParentCode        *string `db:"parent_code"`
	ParentDescription *string `db:"parent_description"`
}

// Table is the permissions table definition.
var Table = postgres.Table[domain.Permission, row]{
	Entity: "permission",
	Name:   "permissions",
	Alias:  "p",
	Select: append(postgres.BaseSelect("p"), "p.name", "p.code", "p.description", "p.role_id"),
	Joins: []string{
		"roles ro ON ro.id = p.role_id",
		"permissions pp ON pp.id = p.parent_id",
	},
	JoinSelect: append(postgres.JoinSelect("ro", domain.RelRole, "name", "code", "description"),
		postgres.JoinSelect("pp", "parent", "name", "code", "description")...),
	Columns: postgres.Columns(postgres.Columns(postgres.Columns(postgres.BaseColumns("p"), "p",
		"name", "name",
		"code", "code",
		"description", "description",
		"roleId", "role_id",
	), "ro",
		"role.name", "name",
		"role.code", "code",
		"role.description", "description",
	), "pp",
		"parent.name", "name",
		"parent.code", "code",
		"parent.description", "description",
	),
	Values: func(p domain.Permission) map[string]any {
		return map[string]any{
			"name":        p.Name,
			"code":        p.Code,
			"description": p.Description,
			"role_id":     p.RoleID,
		}
	},
	Map: toDomain,
}

func toDomain(r row, includes []string) domain.Permission {
	p := domain.Permission{
		Base:        r.Base(),
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		RoleID:      r.RoleID,
	}
	if r.RoleID != nil && r.RoleName != nil && postgres.Included(includes, domain.RelRole) {
		p.Role = &domain.Role{
			Base:        domain.Base{ID: *r.RoleID},
			Name:        *r.RoleName,
			Code:        postgres.Str(r.RoleCode),
			Description: postgres.Str(r.RoleDescription),
		}
	}
	if r.ParentID != nil && r.ParentName != nil && postgres.Included(includes, domain.RelParent) {
		p.Parent = &domain.Permission{
			Base:        domain.Base{ID: *r.ParentID},
			Name:        *r.ParentName,
			Code:        postgres.Str(r.ParentCode),
			Description: postgres.Str(r.ParentDescription),
		}
	}
	return p
}

// Store is the permission repository.
type Store = postgres.Store[domain.Permission, row]

// New creates a permission repository.
func New(q postgres.Querier) *Store {
	return postgres.NewStore(q, Table)
}
