package domain

import "time"

// Role enumerates the four actor kinds sharing the ticket store.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
	RoleClientUser Role = "client_user"
)

// IsStaff reports whether the role is tenant-agnostic.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// IsTenant reports whether the role belongs to a company.
func (r Role) IsTenant() bool {
	return r == RoleClient || r == RoleClientUser
}

// Valid reports whether the role is one of the known kinds.
func (r Role) Valid() bool {
	return r.IsStaff() || r.IsTenant()
}

// TenantInfo carries the company scoping data only client roles hold.
// CreatedByClient back-references the client that created a client_user;
// it is a lookup aid, never ownership.
type TenantInfo struct {
	CompanyCode     string
	CompanyName     string
	CreatedByClient *string
}

// Actor is any authenticated principal. Staff records (admin, employee)
// carry a nil Tenant; client and client_user records always carry one, so
// a staff record cannot hold a company code at the type level.
type Actor struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Tenant       *TenantInfo
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanyCode returns the actor's company code, empty for staff.
func (a *Actor) CompanyCode() string {
	if a.Tenant == nil {
		return ""
	}
	return a.Tenant.CompanyCode
}

// Validate checks the role/tenant coupling invariant.
func (a *Actor) Validate() error {
	if !a.Role.Valid() {
		return ErrUnknownRole
	}
	if a.Role.IsTenant() && (a.Tenant == nil || a.Tenant.CompanyCode == "") {
		return ErrMissingCompany
	}
	if a.Role.IsStaff() && a.Tenant != nil {
		return ErrUnexpectedCompany
	}
	return nil
}
