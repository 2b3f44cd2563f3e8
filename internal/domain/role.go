package domain

import (
	"strings"

	"github.com/heartmarshall/erp-backend/internal/query"
)

// Role is a named set of permissions. A child role inherits from its parent.
type Role struct {
	Base
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`

	Parent *Role `json:"parent,omitempty"`
}

var roleFields = []query.Field[Role]{
	query.Text("name", func(r Role) string { return r.Name }),
	query.Text("code", func(r Role) string { return r.Code }),
	query.Text("description", func(r Role) string { return r.Description }),
}

var roleSchema = query.Schema[Role]{
	Text: roleFields,
	Relations: []query.Relation[Role]{
		query.Relate(RelParent, func(r Role) *Role { return r.Parent }, roleFields),
	},
	Sort: baseSortKeys[Role](),
}

func (Role) QuerySchema() query.Schema[Role] { return roleSchema }

func (r Role) Rebase(b Base) Role {
	r.Base = b
	return r
}

func (r Role) Normalize() Role {
	r.Name = CleanText(r.Name)
	r.Code = NormalizeCode(r.Code)
	r.Description = CleanText(r.Description)
	r.Parent = nil
	return r
}

func (r Role) Validate() error {
	var checks fieldChecks
	checks.required("name", r.Name, MaxNameLength)
	checks.required("code", r.Code, MaxCodeLength)
	checks.optional("description", r.Description, MaxTextLength)
	checks.ref("parentId", r.ParentID)
	return checks.err()
}

// Permission is a grantable action. Permissions nest (e.g. "orders" over
// "orders.approve") and may be attached to a role.
type Permission struct {
	Base
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	RoleID      *int64 `json:"roleId"`

	Role   *Role       `json:"role,omitempty"`
	Parent *Permission `json:"parent,omitempty"`
}

var permissionFields = []query.Field[Permission]{
	query.Text("name", func(p Permission) string { return p.Name }),
	query.Text("code", func(p Permission) string { return p.Code }),
	query.Text("description", func(p Permission) string { return p.Description }),
}

var permissionSchema = query.Schema[Permission]{
	Text: permissionFields,
	Relations: []query.Relation[Permission]{
		query.Relate(RelRole, func(p Permission) *Role { return p.Role }, roleFields),
		query.Relate(RelParent, func(p Permission) *Permission { return p.Parent }, permissionFields),
	},
	Sort: append(baseSortKeys[Permission](),
		query.SortBy("roleId", func(p Permission) int64 { return derefID(p.RoleID) }),
	),
}

func (Permission) QuerySchema() query.Schema[Permission] { return permissionSchema }

func (p Permission) Rebase(b Base) Permission {
	p.Base = b
	return p
}

func (p Permission) Normalize() Permission {
	p.Name = CleanText(p.Name)
	p.Code = strings.ToLower(CleanText(p.Code))
	p.Description = CleanText(p.Description)
	p.Role = nil
	p.Parent = nil
	return p
}

func (p Permission) Validate() error {
	var checks fieldChecks
	checks.required("name", p.Name, MaxNameLength)
	checks.required("code", p.Code, MaxCodeLength)
	checks.optional("description", p.Description, MaxTextLength)
	checks.ref("roleId", p.RoleID)
	checks.ref("parentId", p.ParentID)
	return checks.err()
}
