package memory

import (
	"context"

	"github.com/heartmarshall/erp-backend/internal/domain"
)

// Stores bundles one store per directory entity, wired with their relations.
type Stores struct {
	Companies   *Store[domain.Company]
	Departments *Store[domain.Department]
	Vendors     *Store[domain.Vendor]
	Roles       *Store[domain.Role]
	Permissions *Store[domain.Permission]
}

// NewStores creates empty, cross-referenced stores.
func NewStores() *Stores {
	companies := NewStore(domain.KindCompany.String(),
		WithRelation(domain.RelParent, func(c domain.Company, self Lookup[domain.Company]) domain.Company {
			c.Parent = parentOf(c.ParentID, self)
			return c
		}),
	)

	departments := NewStore(domain.KindDepartment.String(),
		WithRelation(domain.RelCompany, func(d domain.Department, _ Lookup[domain.Department]) domain.Department {
			d.Company = parentOf(&d.CompanyID, companies.Lookup)
			return d
		}),
		WithRelation(domain.RelParent, func(d domain.Department, self Lookup[domain.Department]) domain.Department {
			d.Parent = parentOf(d.ParentID, self)
			return d
		}),
		WithReference("companyId", func(d domain.Department) *int64 { return &d.CompanyID }, companies.Exists),
	)

	vendors := NewStore(domain.KindVendor.String(),
		WithRelation(domain.RelCompany, func(v domain.Vendor, _ Lookup[domain.Vendor]) domain.Vendor {
			v.Company = parentOf(v.CompanyID, companies.Lookup)
			return v
		}),
		WithRelation(domain.RelParent, func(v domain.Vendor, self Lookup[domain.Vendor]) domain.Vendor {
			v.Parent = parentOf(v.ParentID, self)
			return v
		}),
		WithReference("companyId", func(v domain.Vendor) *int64 { return v.CompanyID }, companies.Exists),
	)

	roles := NewStore(domain.KindRole.String(),
		WithRelation(domain.RelParent, func(r domain.Role, self Lookup[domain.Role]) domain.Role {
			r.Parent = parentOf(r.ParentID, self)
			return r
		}),
	)

	permissions := NewStore(domain.KindPermission.String(),
		WithRelation(domain.RelRole, func(p domain.Permission, _ Lookup[domain.Permission]) domain.Permission {
			p.Role = parentOf(p.RoleID, roles.Lookup)
			return p
		}),
		WithRelation(domain.RelParent, func(p domain.Permission, self Lookup[domain.Permission]) domain.Permission {
			p.Parent = parentOf(p.ParentID, self)
			return p
		}),
		WithReference("roleId", func(p domain.Permission) *int64 { return p.RoleID }, roles.Exists),
	)

	return &Stores{
		Companies:   companies,
		Departments: departments,
		Vendors:     vendors,
		Roles:       roles,
		Permissions: permissions,
	}
}

// Ping satisfies the health check; process memory is always reachable.
func (s *Stores) Ping(context.Context) error { return nil }

// parentOf looks up a related record. Stored records carry no relations, so
// the result is one level deep.
func parentOf[T any](id *int64, lookup Lookup[T]) *T {
	if id == nil {
		return nil
	}
	v, ok := lookup(*id)
	if !ok {
		return nil
	}
	return &v
}
