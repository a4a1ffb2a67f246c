package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of staff account roles. Access checks must go
// through Role methods rather than comparing raw strings.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleSchoolAdmin      Role = "school_admin"
	RoleTeacher          Role = "teacher"
	RoleAccountant       Role = "accountant"
	RoleCashier          Role = "cashier"
	RoleReceptionist     Role = "receptionist"
	RoleLibrarian        Role = "librarian"
	RoleTransportManager Role = "transport_manager"
)

var knownRoles = map[Role]bool{
	RoleSuperAdmin:       true,
	RoleSchoolAdmin:      true,
	RoleTeacher:          true,
	RoleAccountant:       true,
	RoleCashier:          true,
	RoleReceptionist:     true,
	RoleLibrarian:        true,
	RoleTransportManager: true,
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, knownRoles[r]
}

func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// OneOf is the single authorization predicate for role checks.
// Super-admin passes every check.
func (r Role) OneOf(allowed ...Role) bool {
	if r.IsSuperAdmin() {
		return true
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	Username    string    `gorm:"size:100;not null;unique" json:"username"`
	Email       string    `gorm:"size:255;not null;unique" json:"email"`
	FullName    string    `gorm:"size:255;not null" json:"full_name"`
	Password    string    `gorm:"not null" json:"-"`
	Role        Role      `gorm:"size:30;not null;default:'teacher'" json:"role"`
	Permissions string    `gorm:"type:text" json:"permissions"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	Phone       *string   `gorm:"size:30" json:"phone"`

	// TenantID is nil only for super-admin accounts. LegacySchoolID bridges
	// records created before tenants got their own table; ResolveTenant in
	// the middleware package owns the fallback order.
	TenantID       *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"`
	LegacySchoolID *uuid.UUID `gorm:"type:uuid" json:"-"`

	Tenant *Tenant `gorm:"foreignkey:TenantID" json:"tenant,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
