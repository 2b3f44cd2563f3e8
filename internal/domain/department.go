package domain

import "github.com/heartmarshall/erp-backend/internal/query"

// Department is an organizational unit of a company.
type Department struct {
	Base
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	CompanyID   int64  `json:"companyId"`

	Company *Company    `json:"company,omitempty"`
	Parent  *Department `json:"parent,omitempty"`
}

var departmentFields = []query.Field[Department]{
	query.Text("name", func(d Department) string { return d.Name }),
	query.Text("code", func(d Department) string { return d.Code }),
	query.Text("description", func(d Department) string { return d.Description }),
}

var departmentSchema = query.Schema[Department]{
	Text: departmentFields,
	Relations: []query.Relation[Department]{
		query.Relate(RelCompany, func(d Department) *Company { return d.Company }, companyFields),
		query.Relate(RelParent, func(d Department) *Department { return d.Parent }, departmentFields),
	},
	Sort: append(baseSortKeys[Department](),
		query.SortBy("companyId", func(d Department) int64 { return d.CompanyID }),
	),
}

func (Department) QuerySchema() query.Schema[Department] { return departmentSchema }

func (d Department) Rebase(b Base) Department {
	d.Base = b
	return d
}

func (d Department) Normalize() Department {
	d.Name = CleanText(d.Name)
	d.Code = NormalizeCode(d.Code)
	d.Description = CleanText(d.Description)
	d.Company = nil
	d.Parent = nil
	return d
}

func (d Department) Validate() error {
	var checks fieldChecks
	checks.required("name", d.Name, MaxNameLength)
	checks.optional("code", d.Code, MaxCodeLength)
	checks.optional("description", d.Description, MaxTextLength)
	if d.CompanyID <= 0 {
		checks.add("companyId", "required")
	}
	checks.ref("parentId", d.ParentID)
	return checks.err()
}
