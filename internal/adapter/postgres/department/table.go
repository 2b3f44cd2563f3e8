// Package department maps domain.Department onto the departments table.
package department

import (
	postgres "github.com/heartmarshall/erp-backend/internal/adapter/postgres"
	"github.com/heartmarshall/erp-backend/internal/adapter/postgres/company"
	"github.com/heartmarshall/erp-backend/internal/domain"
)

type row struct {
	postgres.BaseRow
	company.Joined
	Name        string `db:"name"`
	Code        string `db:"code"`
	Description string `db:"description"`
	CompanyID   int64  `db:"company_id"`

	ParentName        *string `db:"parent_name"`
	ParentCode        *string `db:"parent_code"`
	ParentDescription *string `db:"parent_description"`
}

// Table is the departments table definition.
var Table = postgres.Table[domain.Department, row]{
	Entity: "department",
	Name:   "departments",
	Alias:  "d",
	Select: append(postgres.BaseSelect("d"), "d.name", "d.code", "d.description", "d.company_id"),
	Joins: []string{
		"companies co ON co.id = d.company_id",
		"departments pd ON pd.id = d.parent_id",
	},
	JoinSelect: append(company.JoinSelect("co"),
		postgres.JoinSelect("pd", "parent", "name", "code", "description")...),
	Columns: postgres.Columns(company.JoinColumns(postgres.Columns(postgres.BaseColumns("d"), "d",
		"name", "name",
		"code", "code",
		"description", "description",
		"companyId", "company_id",
	), "co"), "pd",
		"parent.name", "name",
		"parent.code", "code",
		"parent.description", "description",
	),
	Values: func(d domain.Department) map[string]any {
		return map[string]any{
			"name":        d.Name,
			"code":        d.Code,
			"description": d.Description,
			"company_id":  d.CompanyID,
		}
	},
	Map: toDomain,
}

func toDomain(r row, includes []string) domain.Department {
	d := domain.Department{
		Base:        r.Base(),
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		CompanyID:   r.CompanyID,
	}
	if postgres.Included(includes, domain.RelCompany) {
		d.Company = r.Company(&r.CompanyID)
	}
	if r.ParentID != nil && r.ParentName != nil && postgres.Included(includes, domain.RelParent) {
		d.Parent = &domain.Department{
			Base:        domain.Base{ID: *r.ParentID},
			Name:        *r.ParentName,
			Code:        postgres.Str(r.ParentCode),
			Description: postgres.Str(r.ParentDescription),
			CompanyID:   r.CompanyID,
		}
	}
	return d
}

// Store is the department repository.
type Store = postgres.Store[domain.Department, row]

// New creates a department repository.
func New(q postgres.Querier) *Store {
	return postgres.NewStore(q, Table)
}
