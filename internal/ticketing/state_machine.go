// Package ticketing owns the ticket lifecycle: the status state machine and
// the assignment engine. Operations take a ticket value and return a new
// value; callers persist the result. Nothing here touches storage directly.
package ticketing

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

// Transition moves a ticket to the target status and applies the timestamp
// effects of entering it. Re-applying the current status is a successful
// no-op. Timestamp stamping is idempotent: an already-set resolvedAt or
// closedAt is never re-stamped, and reopening retains both as historical
// fact. All four lifecycle states currently accept each other; an unknown
// target yields INVALID_TRANSITION, reserved for future states.
func Transition(t domain.Ticket, target domain.TicketStatus, now time.Time) (domain.Ticket, error) {
	if !t.Status.Valid() {
		return t, apperrors.NewInvalidTransition(string(t.Status), string(target))
	}
	if !target.Valid() {
		return t, apperrors.NewInvalidTransition(string(t.Status), string(target))
	}
	if target == t.Status {
		return t, nil
	}

	t.Status = target
	switch target {
	case domain.TicketStatusResolved:
		if t.ResolvedAt == nil {
			stamp := now
			t.ResolvedAt = &stamp
		}
	case domain.TicketStatusClosed:
		if t.ClosedAt == nil {
			stamp := now
			t.ClosedAt = &stamp
		}
	}
	return t, nil
}
