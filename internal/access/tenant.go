package access

import "github.com/opsdesk/opsdesk/internal/domain"

// TicketScope is the query scoping rule derived from an actor. Staff get an
// unscoped view; client roles are pinned to their company code.
type TicketScope struct {
	All         bool
	CompanyCode string
}

// ScopeFor resolves the scoping rule to apply to every ticket query issued
// on behalf of the actor. Resolved fresh per request.
func ScopeFor(actor *domain.Actor) TicketScope {
	if actor != nil && actor.Role.IsStaff() {
		return TicketScope{All: true}
	}
	if actor == nil {
		return TicketScope{}
	}
	return TicketScope{CompanyCode: actor.CompanyCode()}
}
