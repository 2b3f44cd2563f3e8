// Package company maps domain.Company onto the companies table.
package company

import (
	postgres "github.com/heartmarshall/erp-backend/internal/adapter/postgres"
	"github.com/heartmarshall/erp-backend/internal/domain"
)

type row struct {
	postgres.BaseRow
	Name      string `db:"name"`
	Code      string `db:"code"`
	TaxNumber string `db:"tax_number"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Address   string `db:"address"`

	ParentName      *string `db:"parent_name"`
	ParentCode      *string `db:"parent_code"`
	ParentTaxNumber *string `db:"parent_tax_number"`
	ParentEmail     *string `db:"parent_email"`
	ParentPhone     *string `db:"parent_phone"`
	ParentAddress   *string `db:"parent_address"`
}

// Table is the companies table definition.
var Table = postgres.Table[domain.Company, row]{
	Entity: "company",
	Name:   "companies",
	Alias:  "c",
	Select: append(postgres.BaseSelect("c"),
		"c.name", "c.code", "c.tax_number", "c.email", "c.phone", "c.address"),
	Joins: []string{"companies pc ON pc.id = c.parent_id"},
	JoinSelect: postgres.JoinSelect("pc", "parent",
		"name", "code", "tax_number", "email", "phone", "address"),
	Columns: postgres.Columns(postgres.Columns(postgres.BaseColumns("c"), "c",
		"name", "name",
		"code", "code",
		"taxNumber", "tax_number",
		"email", "email",
		"phone", "phone",
		"address", "address",
	), "pc",
		"parent.name", "name",
		"parent.code", "code",
		"parent.taxNumber", "tax_number",
		"parent.email", "email",
		"parent.phone", "phone",
		"parent.address", "address",
	),
	Values: func(c domain.Company) map[string]any {
		return map[string]any{
			"name":       c.Name,
			"code":       c.Code,
			"tax_number": c.TaxNumber,
			"email":      c.Email,
			"phone":      c.Phone,
			"address":    c.Address,
		}
	},
	Map: toDomain,
}

func toDomain(r row, includes []string) domain.Company {
	c := domain.Company{
		Base:      r.Base(),
		Name:      r.Name,
		Code:      r.Code,
		TaxNumber: r.TaxNumber,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
	}
	if r.ParentID != nil && r.ParentName != nil && postgres.Included(includes, domain.RelParent) {
		c.Parent = &domain.Company{
			Base:      domain.Base{ID: *r.ParentID},
			Name:      *r.ParentName,
			Code:      postgres.Str(r.ParentCode),
			TaxNumber: postgres.Str(r.ParentTaxNumber),
			Email:     postgres.Str(r.ParentEmail),
			Phone:     postgres.Str(r.ParentPhone),
			Address:   postgres.Str(r.ParentAddress),
		}
	}
	return c
}

// Store is the company repository.
type Store = postgres.Store[domain.Company, row]

// New creates a company repository.
func New(q postgres.Querier) *Store {
	return postgres.NewStore(q, Table)
}

// Joined holds the company columns another table selects through a join
// aliased as the company relation. Rows embed it.
type Joined struct {
	CompanyName      *string `db:"company_name"`
	CompanyCode      *string `db:"company_code"`
	CompanyTaxNumber *string `db:"company_tax_number"`
	CompanyEmail     *string `db:"company_email"`
	CompanyPhone     *string `db:"company_phone"`
	CompanyAddress   *string `db:"company_address"`
}

// Company builds the related company, or nil when the join found nothing.
func (j Joined) Company(id *int64) *domain.Company {
	if id == nil || j.CompanyName == nil {
		return nil
	}
	return &domain.Company{
		Base:      domain.Base{ID: *id},
		Name:      *j.CompanyName,
		Code:      postgres.Str(j.CompanyCode),
		TaxNumber: postgres.Str(j.CompanyTaxNumber),
		Email:     postgres.Str(j.CompanyEmail),
		Phone:     postgres.Str(j.CompanyPhone),
		Address:   postgres.Str(j.CompanyAddress),
	}
}

// JoinSelect selects the Joined columns from alias.
func JoinSelect(alias string) []string {
	return postgres.JoinSelect(alias, domain.RelCompany, "name", "code", "tax_number", "email", "phone", "address")
}

// JoinColumns maps the company relation fields onto alias.
func JoinColumns(dst map[string]string, alias string) map[string]string {
	return postgres.Columns(dst, alias,
		"company.name", "name",
		"company.code", "code",
		"company.taxNumber", "tax_number",
		"company.email", "email",
		"company.phone", "phone",
		"company.address", "address",
	)
}
