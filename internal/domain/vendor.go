package domain

import "github.com/heartmarshall/erp-backend/internal/query"

// Vendor is a supplier. A vendor may belong to a parent vendor group.
type Vendor struct {
	Base
	Name        string `json:"name"`
	Code        string `json:"code"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyID   *int64 `json:"companyId"`

	Company *Company `json:"company,omitempty"`
	Parent  *Vendor  `json:"parent,omitempty"`
}

var vendorFields = []query.Field[Vendor]{
	query.Text("name", func(v Vendor) string { return v.Name }),
	query.Text("code", func(v Vendor) string { return v.Code }),
	query.Text("contactName", func(v Vendor) string { return v.ContactName }),
	query.Text("email", func(v Vendor) string { return v.Email }),
	query.Text("phone", func(v Vendor) string { return v.Phone }),
}

var vendorSchema = query.Schema[Vendor]{
	Text: vendorFields,
	Relations: []query.Relation[Vendor]{
		query.Relate(RelCompany, func(v Vendor) *Company { return v.Company }, companyFields),
		query.Relate(RelParent, func(v Vendor) *Vendor { return v.Parent }, vendorFields),
	},
	Sort: append(baseSortKeys[Vendor](),
		query.SortBy("companyId", func(v Vendor) int64 { return derefID(v.CompanyID) }),
	),
}

func (Vendor) QuerySchema() query.Schema[Vendor] { return vendorSchema }

func (v Vendor) Rebase(b Base) Vendor {
	v.Base = b
	return v
}

func (v Vendor) Normalize() Vendor {
	v.Name = CleanText(v.Name)
	v.Code = NormalizeCode(v.Code)
	v.ContactName = CleanText(v.ContactName)
	v.Email = NormalizeEmail(v.Email)
	v.Phone = CleanText(v.Phone)
	v.Company = nil
	v.Parent = nil
	return v
}

func (v Vendor) Validate() error {
	var checks fieldChecks
	checks.required("name", v.Name, MaxNameLength)
	checks.optional("code", v.Code, MaxCodeLength)
	checks.optional("contactName", v.ContactName, MaxNameLength)
	checks.email("email", v.Email)
	checks.optional("phone", v.Phone, MaxCodeLength)
	checks.ref("companyId", v.CompanyID)
	checks.ref("parentId", v.ParentID)
	return checks.err()
}
