// Package access decides, per request, whether an actor may see or mutate a
// resource. Every function here is a pure predicate over already-loaded
// records; callers must treat a false result as a forbidden request, never
// skip the check, and never cache results across requests.
package access

import "github.com/opsdesk/opsdesk/internal/domain"

// CanAccessTicket is the sole tenant-isolation boundary for tickets. Staff
// see everything; client roles see only tickets of their own company.
func CanAccessTicket(actor *domain.Actor, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleEmployee:
		return true
	case domain.RoleClient, domain.RoleClientUser:
		return actor.CompanyCode() != "" && ticket.CompanyCode == actor.CompanyCode()
	}
	return false
}

// CanManage reports whether actor may manage (update, deactivate) target.
// Admins manage anyone. A client manages only client_users it created
// inside its own company. Employees and client_users manage nobody.
func CanManage(actor, target *domain.Actor) bool {
	if actor == nil || target == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleClient:
		if target.Role != domain.RoleClientUser {
			return false
		}
		if target.CompanyCode() != actor.CompanyCode() {
			return false
		}
		return target.Tenant != nil &&
			target.Tenant.CreatedByClient != nil &&
			*target.Tenant.CreatedByClient == actor.ID
	}
	return false
}

// CreatableRoles returns the roles the actor may create accounts for. An
// empty set signals a forbidden operation, not an error.
func CreatableRoles(actor *domain.Actor) []domain.Role {
	if actor == nil {
		return nil
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return []domain.Role{domain.RoleEmployee, domain.RoleClient}
	case domain.RoleClient:
		return []domain.Role{domain.RoleClientUser}
	}
	return nil
}

// MayCreate reports whether actor may create an account with the given role.
func MayCreate(actor *domain.Actor, role domain.Role) bool {
	for _, allowed := range CreatableRoles(actor) {
		if allowed == role {
			return true
		}
	}
	return false
}
