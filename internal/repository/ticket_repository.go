package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ticketing"
	"github.com/opsdesk/opsdesk/internal/workload"
)

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	CompanyCode        *string
	ClientID           *string
	AssignedEmployeeID *string
	Department         *string
	Statuses           []domain.TicketStatus
	Priorities         []domain.TicketPriority
	SearchTerm         *string
	Limit              int
	Offset             int
}

// TicketMutation hands a mutation callback its transaction-scoped
// collaborators: a directory and workload counter that observe the same
// snapshot the mutation will commit against.
type TicketMutation struct {
	Directory ticketing.Directory
	Workload  ticketing.WorkloadCounter
}

// TicketMutateFunc transforms a ticket value; the repository persists the
// returned value atomically. Returning an error rolls everything back.
type TicketMutateFunc func(ctx context.Context, m TicketMutation, t domain.Ticket) (domain.Ticket, error)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Mutate(ctx context.Context, ticketID string, fn TicketMutateFunc) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, priority, category, department,
        status, client_id, client_name, company_code, attachments, created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, title, description, priority, category, department,
            status, client_id, client_name, company_code, attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Category,
		ticket.Department,
		ticket.Status,
		ticket.ClientID,
		ticket.ClientName,
		ticket.CompanyCode,
		ticket.Attachments,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return getTicket(ctx, r.pool, id, false)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyCode != nil {
		args = append(args, *filter.CompanyCode)
		clauses = append(clauses, fmt.Sprintf("company_code=$%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.AssignedEmployeeID != nil {
		args = append(args, *filter.AssignedEmployeeID)
		clauses = append(clauses, fmt.Sprintf(
			"id IN (SELECT ticket_id FROM ticket_assignments WHERE employee_id=$%d)", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		assignments, err := loadAssignments(ctx, r.pool, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		tickets[i].Assignments = assignments
	}
	return tickets, nil
}

// Mutate runs fn inside one transaction holding a row lock on the ticket.
// The workload counter it hands out takes a per-employee advisory lock
// before counting, so concurrent capacity checks against the same employee
// serialize and the loser observes the winner's committed write. Either the
// whole mutation commits or none of it does.
func (r *ticketRepository) Mutate(ctx context.Context, ticketID string, fn TicketMutateFunc) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ticket, err := getTicket(ctx, tx, ticketID, true)
	if err != nil {
		return nil, err
	}

	mutation := TicketMutation{
		Directory: NewActorRepository(tx),
		Workload:  &lockingWorkload{tx: tx, tracker: workload.NewTracker(tx)},
	}
	updated, err := fn(ctx, mutation, *ticket)
	if err != nil {
		return nil, err
	}

	if err := saveTicket(ctx, tx, &updated); err != nil {
		return nil, err
	}
	if err := saveAssignments(ctx, tx, updated.ID, updated.Assignments); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &updated, nil
}

// lockingWorkload serializes capacity checks per employee for the duration
// of the enclosing transaction.
type lockingWorkload struct {
	tx      pgx.Tx
	tracker *workload.Tracker
}

func (l *lockingWorkload) ActiveCount(ctx context.Context, employeeID string) (int, error) {
	if _, err := l.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
		return 0, err
	}
	return l.tracker.ActiveCount(ctx, employeeID)
}

func getTicket(ctx context.Context, db DBTX, id string, forUpdate bool) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var ticket domain.Ticket
	if err := db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Department,
		&ticket.Status,
		&ticket.ClientID,
		&ticket.ClientName,
		&ticket.CompanyCode,
		&ticket.Attachments,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}

	assignments, err := loadAssignments(ctx, db, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Assignments = assignments
	return &ticket, nil
}

func saveTicket(ctx context.Context, db DBTX, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets
        SET status=$1, resolved_at=$2, closed_at=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := db.Exec(ctx, query,
		ticket.Status,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func loadAssignments(ctx context.Context, db DBTX, ticketID string) ([]domain.Assignment, error) {
	const query = `
        SELECT employee_id, employee_name, department, assigned_at, is_primary
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY position ASC`
	rows, err := db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(
			&a.EmployeeID,
			&a.EmployeeName,
			&a.Department,
			&a.AssignedAt,
			&a.IsPrimary,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func saveAssignments(ctx context.Context, db DBTX, ticketID string, assignments []domain.Assignment) error {
	if _, err := db.Exec(ctx, `DELETE FROM ticket_assignments WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_assignments (ticket_id, employee_id, employee_name, department, assigned_at, is_primary, position)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for i, a := range assignments {
		if _, err := db.Exec(ctx, query,
			ticketID,
			a.EmployeeID,
			a.EmployeeName,
			a.Department,
			a.AssignedAt,
			a.IsPrimary,
			i,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Department,
			&ticket.Status,
			&ticket.ClientID,
			&ticket.ClientName,
			&ticket.CompanyCode,
			&ticket.Attachments,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
