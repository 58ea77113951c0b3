package events

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventActorCreated        EventType = "actor_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Department   string                `json:"department"`
	CompanyCode  string                `json:"company_code"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
	AutoAssigned bool                  `json:"auto_assigned"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	EmployeeIDs       []string `json:"employee_ids"`
	PrimaryEmployeeID string   `json:"primary_employee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string      `json:"comment_id"`
	AuthorRole domain.Role `json:"author_role"`
}

// ActorCreatedPayload payload.
type ActorCreatedPayload struct {
	ActorID     string      `json:"actor_id"`
	Role        domain.Role `json:"role"`
	CompanyCode string      `json:"company_code,omitempty"`
}
