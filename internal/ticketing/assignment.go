package ticketing

import (
	"context"
	"sort"
	"time"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

const (
	// AutoAssignCap is the active-ticket cap for automatic assignment.
	AutoAssignCap = 3
	// ManualAssignCap is the cap for explicit staff assignment. Looser than
	// the auto cap because manual assignment is a deliberate override.
	ManualAssignCap = 5
	// MaxAutoAssignees bounds how many employees auto-assign picks.
	MaxAutoAssignees = 2
)

// Directory lists employees for assignment decisions. Fetch order must be
// stable: it breaks workload ties during auto-assignment.
type Directory interface {
	ActiveEmployeesByDepartment(ctx context.Context, department string) ([]domain.Actor, error)
	EmployeesByIDs(ctx context.Context, ids []string) ([]domain.Actor, error)
}

// WorkloadCounter reports an employee's current active-ticket count. It is
// consulted immediately before every capacity check, never cached.
type WorkloadCounter interface {
	ActiveCount(ctx context.Context, employeeID string) (int, error)
}

type candidate struct {
	employee domain.Actor
	count    int
}

// AutoAssign picks up to MaxAutoAssignees employees from the ticket's
// department, ranked by ascending workload, skipping anyone at or over
// AutoAssignCap. Zero available candidates is not an error: the ticket
// stays OPEN and unassigned. The first ranked candidate becomes primary
// and the ticket moves to IN_PROGRESS.
func AutoAssign(ctx context.Context, dir Directory, workload WorkloadCounter, t domain.Ticket, now time.Time) (domain.Ticket, error) {
	employees, err := dir.ActiveEmployeesByDepartment(ctx, t.Department)
	if err != nil {
		return t, err
	}

	available := make([]candidate, 0, len(employees))
	for _, emp := range employees {
		count, err := workload.ActiveCount(ctx, emp.ID)
		if err != nil {
			return t, err
		}
		if count < AutoAssignCap {
			available = append(available, candidate{employee: emp, count: count})
		}
	}
	if len(available) == 0 {
		return t, nil
	}

	// Stable sort: ties keep directory fetch order.
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].count < available[j].count
	})
	if len(available) > MaxAutoAssignees {
		available = available[:MaxAutoAssignees]
	}

	assignments := make([]domain.Assignment, 0, len(available))
	for i, cand := range available {
		assignments = append(assignments, domain.Assignment{
			EmployeeID:   cand.employee.ID,
			EmployeeName: cand.employee.Name,
			Department:   cand.employee.Department,
			AssignedAt:   now,
			IsPrimary:    i == 0,
		})
	}
	t.Assignments = assignments
	return Transition(t, domain.TicketStatusInProgress, now)
}

// Assign replaces the whole assignment set with the given employees, in
// order; the first entry becomes primary. All-or-nothing: unknown or
// inactive ids fail with NOT_FOUND listing them, and any employee at or
// over ManualAssignCap fails the call with CAPACITY_EXCEEDED naming every
// offender and its count. On success the ticket moves to IN_PROGRESS.
func Assign(ctx context.Context, dir Directory, workload WorkloadCounter, t domain.Ticket, employeeIDs []string, now time.Time) (domain.Ticket, error) {
	if len(employeeIDs) == 0 {
		return t, apperrors.NewValidationError("employee_ids required", nil)
	}
	if dup := firstDuplicate(employeeIDs); dup != "" {
		return t, apperrors.NewValidationError("duplicate employee id", map[string]any{"employee_id": dup})
	}

	employees, err := resolveEmployees(ctx, dir, employeeIDs)
	if err != nil {
		return t, err
	}

	over := map[string]int{}
	counts := make(map[string]int, len(employeeIDs))
	for _, id := range employeeIDs {
		count, err := workload.ActiveCount(ctx, id)
		if err != nil {
			return t, err
		}
		counts[id] = count
		if count >= ManualAssignCap {
			over[id] = count
		}
	}
	if len(over) > 0 {
		return t, apperrors.NewCapacityExceeded(over)
	}

	assignments := make([]domain.Assignment, 0, len(employeeIDs))
	for i, id := range employeeIDs {
		emp := employees[id]
		assignments = append(assignments, domain.Assignment{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Department:   emp.Department,
			AssignedAt:   now,
			IsPrimary:    i == 0,
		})
	}
	t.Assignments = assignments
	return Transition(t, domain.TicketStatusInProgress, now)
}

// AddEmployee appends one employee to the assignment set. The new entry is
// non-primary unless the set was empty, in which case it becomes primary
// and the ticket moves from OPEN to IN_PROGRESS.
func AddEmployee(ctx context.Context, dir Directory, workload WorkloadCounter, t domain.Ticket, employeeID string, now time.Time) (domain.Ticket, error) {
	if t.HasAssignee(employeeID) {
		return t, apperrors.NewAlreadyAssigned(employeeID)
	}
	employees, err := resolveEmployees(ctx, dir, []string{employeeID})
	if err != nil {
		return t, err
	}
	count, err := workload.ActiveCount(ctx, employeeID)
	if err != nil {
		return t, err
	}
	if count >= ManualAssignCap {
		return t, apperrors.NewCapacityExceeded(map[string]int{employeeID: count})
	}

	emp := employees[employeeID]
	wasEmpty := len(t.Assignments) == 0
	assignments := t.CloneAssignments()
	assignments = append(assignments, domain.Assignment{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Department:   emp.Department,
		AssignedAt:   now,
		IsPrimary:    wasEmpty,
	})
	t.Assignments = assignments
	if wasEmpty {
		return Transition(t, domain.TicketStatusInProgress, now)
	}
	return t, nil
}

// RemoveEmployee drops one employee from the assignment set. Removing the
// primary promotes the first remaining entry, deterministically, with no
// re-ranking by workload. An emptied set reverts the ticket to OPEN.
func RemoveEmployee(t domain.Ticket, employeeID string, now time.Time) (domain.Ticket, error) {
	if !t.HasAssignee(employeeID) {
		return t, apperrors.NewNotAssigned(employeeID)
	}

	removedPrimary := false
	remaining := make([]domain.Assignment, 0, len(t.Assignments)-1)
	for _, a := range t.Assignments {
		if a.EmployeeID == employeeID {
			removedPrimary = a.IsPrimary
			continue
		}
		remaining = append(remaining, a)
	}

	if len(remaining) == 0 {
		t.Assignments = nil
		return Transition(t, domain.TicketStatusOpen, now)
	}
	if removedPrimary {
		remaining[0].IsPrimary = true
	}
	t.Assignments = remaining
	return t, nil
}

// CheckPrimaryInvariant verifies the assignment-set invariant: exactly one
// primary iff the set is non-empty, and no duplicate employee ids.
func CheckPrimaryInvariant(t *domain.Ticket) bool {
	seen := make(map[string]struct{}, len(t.Assignments))
	primaries := 0
	for _, a := range t.Assignments {
		if _, dup := seen[a.EmployeeID]; dup {
			return false
		}
		seen[a.EmployeeID] = struct{}{}
		if a.IsPrimary {
			primaries++
		}
	}
	if len(t.Assignments) == 0 {
		return primaries == 0
	}
	return primaries == 1
}

// resolveEmployees maps ids to active employees, failing with NOT_FOUND
// listing every id that is unknown, inactive, or not an employee.
func resolveEmployees(ctx context.Context, dir Directory, ids []string) (map[string]domain.Actor, error) {
	employees, err := dir.EmployeesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Actor, len(employees))
	for _, emp := range employees {
		if emp.Role != domain.RoleEmployee || !emp.IsActive {
			continue
		}
		byID[emp.ID] = emp
	}
	missing := []string{}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFound("employee", map[string]any{"employee_ids": missing})
	}
	return byID, nil
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}
