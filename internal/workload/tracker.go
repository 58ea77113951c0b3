// Package workload derives employee workload from the persisted ticket set.
// The tracker holds no state of its own: every call reflects the latest
// committed tickets (or the view of the transaction it was given).
package workload

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// tracker serves plain reads and transactional capacity checks.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tracker counts an employee's active tickets.
type Tracker struct {
	db Querier
}

// NewTracker builds a tracker over the given querier.
func NewTracker(db Querier) *Tracker {
	return &Tracker{db: db}
}

// ActiveCount returns how many OPEN or IN_PROGRESS tickets the employee is
// assigned to.
func (t *Tracker) ActiveCount(ctx context.Context, employeeID string) (int, error) {
	const query = `
        SELECT COUNT(*)
        FROM tickets tk
        JOIN ticket_assignments ta ON ta.ticket_id = tk.id
        WHERE ta.employee_id = $1 AND tk.status IN ('OPEN','IN_PROGRESS')`

	var count int
	if err := t.db.QueryRow(ctx, query, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
