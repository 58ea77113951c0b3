package dto

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Department  string                `json:"department"`
	Attachments []string              `json:"attachments"`
}

// UpdateStatusRequest payload for PATCH /tickets/:id.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// BulkAssignRequest payload for PATCH /tickets/:id/assign.
type BulkAssignRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
}

// EmployeeRequest payload for add/remove-employee.
type EmployeeRequest struct {
	EmployeeID string `json:"employeeId"`
}

// AssignmentResponse represents one assignment entry.
type AssignmentResponse struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Department   string    `json:"department"`
	AssignedAt   time.Time `json:"assigned_at"`
	IsPrimary    bool      `json:"is_primary"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     string                `json:"category"`
	Department   string                `json:"department"`
	ClientName   string                `json:"client_name"`
	CompanyCode  string                `json:"company_code"`
	Assignments  []AssignmentResponse  `json:"assigned_employees"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     string                `json:"category"`
	Department   string                `json:"department"`
	ClientID     string                `json:"client_id"`
	ClientName   string                `json:"client_name"`
	CompanyCode  string                `json:"company_code"`
	Assignments  []AssignmentResponse  `json:"assigned_employees"`
	Attachments  []string              `json:"attachments"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID          string      `json:"id"`
	TicketID    string      `json:"ticket_id"`
	AuthorID    string      `json:"author_id"`
	AuthorRole  domain.Role `json:"author_role"`
	Content     string      `json:"content"`
	Attachments []string    `json:"attachments"`
	CreatedAt   time.Time   `json:"created_at"`
}
