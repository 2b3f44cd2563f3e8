// Package role maps domain.Role onto the roles table.
package role

import (
	postgres "github.com/heartmarshall/erp-backend/internal/adapter/postgres"
	"github.com/heartmarshall/erp-backend/internal/domain"
)

type row struct {
	postgres.BaseRow
	Name        string `db:"name"`
	Code        string `db:"code"`
	Description string `db:"description"`

	ParentName        *string `db:"parent_name"`
	ParentCode        *string `db:"parent_code"`
	ParentDescription *string `db:"parent_description"`
}

// Table is the roles table definition.
var Table = postgres.Table[domain.Role, row]{
	Entity:     "role",
	Name:       "roles",
	Alias:      "r",
	Select:     append(postgres.BaseSelect("r"), "r.name", "r.code", "r.description"),
	Joins:      []string{"roles pr ON pr.id = r.parent_id"},
	JoinSelect: postgres.JoinSelect("pr", "parent", "name", "code", "description"),
	Columns: postgres.Columns(postgres.Columns(postgres.BaseColumns("r"), "r",
		"name", "name",
		"code", "code",
		"description", "description",
	), "pr",
		"parent.name", "name",
		"parent.code", "code",
		"parent.description", "description",
	),
	Values: func(r domain.Role) map[string]any {
		return map[string]any{
			"name":        r.Name,
			"code":        r.Code,
			"description": r.Description,
		}
	},
	Map: toDomain,
}

func toDomain(r row, includes []string) domain.Role {
	out := domain.Role{
		Base:        r.Base(),
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
	}
	if r.ParentID != nil && r.ParentName != nil && postgres.Included(includes, domain.RelParent) {
		out.Parent = &domain.Role{
			Base:        domain.Base{ID: *r.ParentID},
			Name:        *r.ParentName,
			Code:        postgres.Str(r.ParentCode),
			Description: postgres.Str(r.ParentDescription),
		}
	}
	return out
}

// Store is the role repository.
type Store = postgres.Store[domain.Role, row]

// New creates a role repository.
func New(q postgres.Querier) *Store {
	return postgres.NewStore(q, Table)
}
