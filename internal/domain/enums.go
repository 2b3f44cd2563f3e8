package domain

// EntityKind names a directory entity type in routes, logs and metrics.
type EntityKind string

const (
	KindCompany    EntityKind = "company"
	KindDepartment EntityKind = "department"
	KindVendor     EntityKind = "vendor"
	KindRole       EntityKind = "role"
	KindPermission EntityKind = "permission"
)

func (k EntityKind) String() string { return string(k) }

func (k EntityKind) IsValid() bool {
	switch k {
	case KindCompany, KindDepartment, KindVendor, KindRole, KindPermission:
		return true
	}
	return false
}

// Relation names shared by the entity schemas. Include lists use them.
const (
	RelParent  = "parent"
	RelCompany = "company"
	RelRole    = "role"
)

// Field limits.
const (
	MaxNameLength = 200
	MaxCodeLength = 50
	MaxTextLength = 2000
)
