package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk/internal/access"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/events"
	"github.com/opsdesk/opsdesk/internal/repository"
	"github.com/opsdesk/opsdesk/internal/ticketing"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

// TicketService coordinates ticket workflows. It is the only component
// that talks to the persistence layer; the access evaluator gates every
// operation and the ticketing engine computes every mutation.
type TicketService struct {
	tickets    repository.TicketRepository
	actors     repository.ActorRepository
	comments   repository.CommentRepository
	sequence   repository.TicketNumberAllocator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	ActorRepo   repository.ActorRepository
	CommentRepo repository.CommentRepository
	Sequence    repository.TicketNumberAllocator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Department  string
	Attachments []string
}

// TicketListFilter describes listing filters common to all list endpoints.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Department *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		actors:     deps.ActorRepo,
		comments:   deps.CommentRepo,
		sequence:   deps.Sequence,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket creates a ticket for a client or client_user and triggers
// department auto-assignment. An empty department roster is not an error:
// the ticket simply stays OPEN and unassigned.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil || !actor.Role.IsTenant() {
		return nil, apperrors.NewForbidden("only clients can open tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	department := strings.TrimSpace(input.Department)
	if title == "" || description == "" || department == "" {
		return nil, apperrors.NewValidationError("title, description, department required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	number, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		TicketNumber: number,
		Title:        title,
		Description:  description,
		Priority:     priority,
		Category:     strings.TrimSpace(input.Category),
		Department:   department,
		Status:       domain.TicketStatusOpen,
		ClientID:     actor.ID,
		ClientName:   actor.Name,
		CompanyCode:  actor.CompanyCode(),
		Attachments:  input.Attachments,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	assigned, err := s.tickets.Mutate(ctx, ticket.ID, func(ctx context.Context, m repository.TicketMutation, t domain.Ticket) (domain.Ticket, error) {
		return ticketing.AutoAssign(ctx, m.Directory, m.Workload, t, time.Now())
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(assigned.Assignments) == 0 {
		s.logger.Info("no available employees for auto-assignment",
			zap.String("ticket_id", assigned.ID),
			zap.String("department", assigned.Department))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: assigned.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber: assigned.TicketNumber,
			Department:   assigned.Department,
			CompanyCode:  assigned.CompanyCode,
			Priority:     assigned.Priority,
			Title:        assigned.Title,
			AutoAssigned: len(assigned.Assignments) > 0,
		},
	})
	if len(assigned.Assignments) > 0 {
		s.publishAssigned(ctx, actor, assigned)
	}
	return assigned, nil
}

// ListAllTickets returns every ticket; staff only.
func (s *TicketService) ListAllTickets(ctx context.Context, actor *domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil || !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}
	return s.list(ctx, actor, filter, repository.TicketFilter{})
}

// ListMyTickets returns tickets created by the calling client actor.
func (s *TicketService) ListMyTickets(ctx context.Context, actor *domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil || !actor.Role.IsTenant() {
		return nil, apperrors.NewForbidden("client role required")
	}
	clientID := actor.ID
	return s.list(ctx, actor, filter, repository.TicketFilter{ClientID: &clientID})
}

// ListAssignedTickets returns tickets the calling employee is assigned to.
func (s *TicketService) ListAssignedTickets(ctx context.Context, actor *domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil || actor.Role != domain.RoleEmployee {
		return nil, apperrors.NewForbidden("employee required")
	}
	employeeID := actor.ID
	return s.list(ctx, actor, filter, repository.TicketFilter{AssignedEmployeeID: &employeeID})
}

func (s *TicketService) list(ctx context.Context, actor *domain.Actor, filter TicketListFilter, base repository.TicketFilter) ([]domain.Ticket, error) {
	scope := access.ScopeFor(actor)
	if !scope.All {
		if scope.CompanyCode == "" {
			return nil, apperrors.NewForbidden("access denied")
		}
		code := scope.CompanyCode
		base.CompanyCode = &code
	}
	base.Statuses = filter.Statuses
	base.Priorities = filter.Priorities
	base.Department = filter.Department
	base.SearchTerm = filter.SearchTerm
	base.Limit = filter.Limit
	base.Offset = filter.Offset

	tickets, err := s.tickets.ListWithFilter(ctx, base)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket, gated by the access evaluator.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateStatus moves a ticket through the status state machine; staff
// only. Re-applying the current status is a successful no-op.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Actor, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil || !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}

	var oldStatus domain.TicketStatus
	updated, err := s.tickets.Mutate(ctx, ticketID, func(ctx context.Context, _ repository.TicketMutation, t domain.Ticket) (domain.Ticket, error) {
		oldStatus = t.Status
		return ticketing.Transition(t, target, time.Now())
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if updated.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: updated.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: updated.Status,
			},
		})
	}
	return updated, nil
}

// BulkAssign replaces a ticket's whole assignment set; admin only.
// All-or-nothing: any invalid or over-capacity employee fails the call and
// leaves the ticket untouched.
func (s *TicketService) BulkAssign(ctx context.Context, actor *domain.Actor, ticketID string, employeeIDs []string) (*domain.Ticket, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}

	updated, err := s.tickets.Mutate(ctx, ticketID, func(ctx context.Context, m repository.TicketMutation, t domain.Ticket) (domain.Ticket, error) {
		return ticketing.Assign(ctx, m.Directory, m.Workload, t, employeeIDs, time.Now())
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssigned(ctx, actor, updated)
	return updated, nil
}

// AddEmployee appends one employee to a ticket's assignment set; admin only.
func (s *TicketService) AddEmployee(ctx context.Context, actor *domain.Actor, ticketID, employeeID string) (*domain.Ticket, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.NewValidationError("employee_id required", nil)
	}

	updated, err := s.tickets.Mutate(ctx, ticketID, func(ctx context.Context, m repository.TicketMutation, t domain.Ticket) (domain.Ticket, error) {
		return ticketing.AddEmployee(ctx, m.Directory, m.Workload, t, employeeID, time.Now())
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssigned(ctx, actor, updated)
	return updated, nil
}

// RemoveEmployee drops one employee from a ticket's assignment set; admin
// only. Removing the last assignee reverts the ticket to OPEN.
func (s *TicketService) RemoveEmployee(ctx context.Context, actor *domain.Actor, ticketID, employeeID string) (*domain.Ticket, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.NewValidationError("employee_id required", nil)
	}

	updated, err := s.tickets.Mutate(ctx, ticketID, func(ctx context.Context, _ repository.TicketMutation, t domain.Ticket) (domain.Ticket, error) {
		return ticketing.RemoveEmployee(t, employeeID, time.Now())
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssigned(ctx, actor, updated)
	return updated, nil
}

// AddComment appends a comment to a ticket the actor can access.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.Actor, ticketID, content string, attachments []string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comment := &domain.Comment{
		TicketID:    ticket.ID,
		AuthorID:    actor.ID,
		AuthorRole:  actor.Role,
		Content:     strings.TrimSpace(content),
		Attachments: attachments,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorRole: actor.Role,
		},
	})
	return comment, nil
}

// ListComments returns a ticket's comment thread, gated like the ticket.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.Actor, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

func (s *TicketService) publishAssigned(ctx context.Context, actor *domain.Actor, ticket *domain.Ticket) {
	payload := events.TicketAssignedPayload{}
	for _, a := range ticket.Assignments {
		payload.EmployeeIDs = append(payload.EmployeeIDs, a.EmployeeID)
		if a.IsPrimary {
			payload.PrimaryEmployeeID = a.EmployeeID
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload:  payload,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor *domain.Actor) events.Actor {
	if actor == nil {
		return events.Actor{}
	}
	return events.Actor{ID: actor.ID, Role: actor.Role}
}
