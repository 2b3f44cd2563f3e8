package domain

import "github.com/heartmarshall/erp-backend/internal/query"

// Company is a legal entity. Companies form a holding hierarchy.
type Company struct {
	Base
	Name      string `json:"name"`
	Code      string `json:"code"`
	TaxNumber string `json:"taxNumber"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`

	Parent *Company `json:"parent,omitempty"`
}

var companyFields = []query.Field[Company]{
	query.Text("name", func(c Company) string { return c.Name }),
	query.Text("code", func(c Company) string { return c.Code }),
	query.Text("taxNumber", func(c Company) string { return c.TaxNumber }),
	query.Text("email", func(c Company) string { return c.Email }),
	query.Text("phone", func(c Company) string { return c.Phone }),
	query.Text("address", func(c Company) string { return c.Address }),
}

var companySchema = query.Schema[Company]{
	Text: companyFields,
	Relations: []query.Relation[Company]{
		query.Relate(RelParent, func(c Company) *Company { return c.Parent }, companyFields),
	},
	Sort: baseSortKeys[Company](),
}

func (Company) QuerySchema() query.Schema[Company] { return companySchema }

func (c Company) Rebase(b Base) Company {
	c.Base = b
	return c
}

func (c Company) Normalize() Company {
	c.Name = CleanText(c.Name)
	c.Code = NormalizeCode(c.Code)
	c.TaxNumber = CleanText(c.TaxNumber)
	c.Email = NormalizeEmail(c.Email)
	c.Phone = CleanText(c.Phone)
	c.Address = CleanText(c.Address)
	c.Parent = nil
	return c
}

func (c Company) Validate() error {
	var checks fieldChecks
	checks.required("name", c.Name, MaxNameLength)
	checks.optional("code", c.Code, MaxCodeLength)
	checks.optional("taxNumber", c.TaxNumber, MaxCodeLength)
	checks.email("email", c.Email)
	checks.optional("phone", c.Phone, MaxCodeLength)
	checks.optional("address", c.Address, MaxTextLength)
	checks.ref("parentId", c.ParentID)
	return checks.err()
}
