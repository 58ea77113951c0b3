package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Active reports whether the status counts toward an employee's workload.
func (s TicketStatus) Active() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Assignment links one employee to a ticket. It is a value object owned
// exclusively by its ticket; at most one per ticket is primary.
type Assignment struct {
	EmployeeID   string
	EmployeeName string
	Department   string
	AssignedAt   time.Time
	IsPrimary    bool
}

// Ticket is the aggregate for support requests. CompanyCode is copied from
// the creating actor and immutable thereafter; tickets are never deleted.
type Ticket struct {
	ID           string
	TicketNumber string
	Title        string
	Description  string
	Priority     TicketPriority
	Category     string
	Department   string
	Status       TicketStatus
	ClientID     string
	ClientName   string
	CompanyCode  string
	Assignments  []Assignment
	Attachments  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

// PrimaryAssignee returns the primary assignment, nil when unassigned.
func (t *Ticket) PrimaryAssignee() *Assignment {
	for i := range t.Assignments {
		if t.Assignments[i].IsPrimary {
			return &t.Assignments[i]
		}
	}
	return nil
}

// HasAssignee reports whether the employee appears in the assignment set.
func (t *Ticket) HasAssignee(employeeID string) bool {
	for i := range t.Assignments {
		if t.Assignments[i].EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// CloneAssignments returns a copy of the assignment set so engine
// operations can work on values without mutating the loaded ticket.
func (t *Ticket) CloneAssignments() []Assignment {
	if len(t.Assignments) == 0 {
		return nil
	}
	out := make([]Assignment, len(t.Assignments))
	copy(out, t.Assignments)
	return out
}
