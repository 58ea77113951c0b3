package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

type fakeDirectory struct {
	byDepartment map[string][]domain.Actor
	byID         map[string]domain.Actor
}

func (f *fakeDirectory) ActiveEmployeesByDepartment(_ context.Context, department string) ([]domain.Actor, error) {
	return f.byDepartment[department], nil
}

func (f *fakeDirectory) EmployeesByIDs(_ context.Context, ids []string) ([]domain.Actor, error) {
	var result []domain.Actor
	for _, id := range ids {
		if emp, ok := f.byID[id]; ok {
			result = append(result, emp)
		}
	}
	return result, nil
}

type fakeWorkload struct {
	counts map[string]int
}

func (f *fakeWorkload) ActiveCount(_ context.Context, employeeID string) (int, error) {
	return f.counts[employeeID], nil
}

func employee(id, name, department string) domain.Actor {
	return domain.Actor{
		ID:         id,
		Name:       name,
		Role:       domain.RoleEmployee,
		Department: department,
		IsActive:   true,
	}
}

func supportDirectory(employees ...domain.Actor) *fakeDirectory {
	dir := &fakeDirectory{
		byDepartment: map[string][]domain.Actor{},
		byID:         map[string]domain.Actor{},
	}
	for _, emp := range employees {
		dir.byDepartment[emp.Department] = append(dir.byDepartment[emp.Department], emp)
		dir.byID[emp.ID] = emp
	}
	return dir
}

func openTicket() domain.Ticket {
	return domain.Ticket{
		ID:          "t-1",
		Department:  "support",
		Status:      domain.TicketStatusOpen,
		CompanyCode: "ACME",
	}
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
		employee("e-3", "Casey", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": 2, "e-2": 0, "e-3": 1}}
	now := time.Now()

	ticket, err := AutoAssign(context.Background(), dir, workload, openTicket(), now)
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 2)
	assert.Equal(t, "e-2", ticket.Assignments[0].EmployeeID)
	assert.True(t, ticket.Assignments[0].IsPrimary)
	assert.Equal(t, "e-3", ticket.Assignments[1].EmployeeID)
	assert.False(t, ticket.Assignments[1].IsPrimary)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.True(t, CheckPrimaryInvariant(&ticket))
}

func TestAutoAssignSkipsEmployeesAtCap(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": AutoAssignCap, "e-2": 1}}

	ticket, err := AutoAssign(context.Background(), dir, workload, openTicket(), time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 1)
	assert.Equal(t, "e-2", ticket.Assignments[0].EmployeeID)
	assert.True(t, ticket.Assignments[0].IsPrimary)
}

func TestAutoAssignTieBreaksByDirectoryOrder(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
		employee("e-3", "Casey", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": 1, "e-2": 1, "e-3": 1}}

	ticket, err := AutoAssign(context.Background(), dir, workload, openTicket(), time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 2)
	assert.Equal(t, "e-1", ticket.Assignments[0].EmployeeID)
	assert.Equal(t, "e-2", ticket.Assignments[1].EmployeeID)
}

func TestAutoAssignNoCandidatesIsNoOp(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": AutoAssignCap + 1}}

	ticket, err := AutoAssign(context.Background(), dir, workload, openTicket(), time.Now())
	require.NoError(t, err)

	assert.Empty(t, ticket.Assignments)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestAutoAssignEmptyDepartmentIsNoOp(t *testing.T) {
	dir := supportDirectory()
	workload := &fakeWorkload{counts: map[string]int{}}

	ticket, err := AutoAssign(context.Background(), dir, workload, openTicket(), time.Now())
	require.NoError(t, err)

	assert.Empty(t, ticket.Assignments)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestAssignReplacesSetAndMakesFirstPrimary(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
		employee("e-3", "Casey", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": 1, "e-2": 4, "e-3": 0}}

	initial := openTicket()
	initial.Assignments = []domain.Assignment{
		{EmployeeID: "e-3", IsPrimary: true},
	}

	ticket, err := Assign(context.Background(), dir, workload, initial, []string{"e-2", "e-1"}, time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 2)
	assert.Equal(t, "e-2", ticket.Assignments[0].EmployeeID)
	assert.True(t, ticket.Assignments[0].IsPrimary)
	assert.Equal(t, "e-1", ticket.Assignments[1].EmployeeID)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.True(t, CheckPrimaryInvariant(&ticket))
}

func TestAssignRejectsUnknownEmployees(t *testing.T) {
	dir := supportDirectory(employee("e-1", "Avery", "support"))
	workload := &fakeWorkload{counts: map[string]int{}}

	_, err := Assign(context.Background(), dir, workload, openTicket(), []string{"e-1", "ghost"}, time.Now())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, []string{"ghost"}, domainErr.Details["employee_ids"])
}

func TestAssignRejectsInactiveEmployees(t *testing.T) {
	inactive := employee("e-1", "Avery", "support")
	inactive.IsActive = false
	dir := supportDirectory(inactive)
	workload := &fakeWorkload{counts: map[string]int{}}

	_, err := Assign(context.Background(), dir, workload, openTicket(), []string{"e-1"}, time.Now())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAssignCapacityBoundary(t *testing.T) {
	dir := supportDirectory(employee("e-1", "Avery", "support"))

	// One below the cap passes.
	workload := &fakeWorkload{counts: map[string]int{"e-1": ManualAssignCap - 1}}
	ticket, err := Assign(context.Background(), dir, workload, openTicket(), []string{"e-1"}, time.Now())
	require.NoError(t, err)
	require.Len(t, ticket.Assignments, 1)

	// At the cap fails naming the offender and its count.
	workload = &fakeWorkload{counts: map[string]int{"e-1": ManualAssignCap}}
	_, err = Assign(context.Background(), dir, workload, openTicket(), []string{"e-1"}, time.Now())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CAPACITY_EXCEEDED", domainErr.Code)
	offenders := domainErr.Details["employees"].(map[string]any)
	assert.Equal(t, ManualAssignCap, offenders["e-1"])
}

func TestAssignAllOrNothingOnCapacity(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{"e-1": 0, "e-2": ManualAssignCap + 2}}

	initial := openTicket()
	_, err := Assign(context.Background(), dir, workload, initial, []string{"e-1", "e-2"}, time.Now())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CAPACITY_EXCEEDED", domainErr.Code)
	offenders := domainErr.Details["employees"].(map[string]any)
	assert.Equal(t, ManualAssignCap+2, offenders["e-2"])
	assert.NotContains(t, offenders, "e-1")
	assert.Empty(t, initial.Assignments)
}

func TestAssignRejectsDuplicates(t *testing.T) {
	dir := supportDirectory(employee("e-1", "Avery", "support"))
	workload := &fakeWorkload{counts: map[string]int{}}

	_, err := Assign(context.Background(), dir, workload, openTicket(), []string{"e-1", "e-1"}, time.Now())
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAddEmployeeToEmptySetBecomesPrimary(t *testing.T) {
	dir := supportDirectory(employee("e-1", "Avery", "support"))
	workload := &fakeWorkload{counts: map[string]int{}}

	ticket, err := AddEmployee(context.Background(), dir, workload, openTicket(), "e-1", time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 1)
	assert.True(t, ticket.Assignments[0].IsPrimary)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
}

func TestAddEmployeeToExistingSetIsNotPrimary(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{}}

	initial := openTicket()
	initial.Status = domain.TicketStatusInProgress
	initial.Assignments = []domain.Assignment{{EmployeeID: "e-1", IsPrimary: true}}

	ticket, err := AddEmployee(context.Background(), dir, workload, initial, "e-2", time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 2)
	assert.True(t, ticket.Assignments[0].IsPrimary)
	assert.False(t, ticket.Assignments[1].IsPrimary)
	assert.True(t, CheckPrimaryInvariant(&ticket))
}

func TestAddEmployeeAlreadyAssigned(t *testing.T) {
	dir := supportDirectory(employee("e-1", "Avery", "support"))
	workload := &fakeWorkload{counts: map[string]int{}}

	initial := openTicket()
	initial.Assignments = []domain.Assignment{{EmployeeID: "e-1", IsPrimary: true}}

	_, err := AddEmployee(context.Background(), dir, workload, initial, "e-1", time.Now())
	require.Error(t, err)
	assert.Equal(t, "ALREADY_ASSIGNED", apperrors.ToDomainError(err).Code)
}

func TestRemovePrimaryPromotesNext(t *testing.T) {
	initial := openTicket()
	initial.Status = domain.TicketStatusInProgress
	initial.Assignments = []domain.Assignment{
		{EmployeeID: "e-1", IsPrimary: true},
		{EmployeeID: "e-2"},
		{EmployeeID: "e-3"},
	}

	ticket, err := RemoveEmployee(initial, "e-1", time.Now())
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 2)
	assert.Equal(t, "e-2", ticket.Assignments[0].EmployeeID)
	assert.True(t, ticket.Assignments[0].IsPrimary)
	assert.True(t, CheckPrimaryInvariant(&ticket))
}

func TestRemoveLastAssigneeReopensTicket(t *testing.T) {
	initial := openTicket()
	initial.Status = domain.TicketStatusInProgress
	initial.Assignments = []domain.Assignment{{EmployeeID: "e-1", IsPrimary: true}}

	ticket, err := RemoveEmployee(initial, "e-1", time.Now())
	require.NoError(t, err)

	assert.Empty(t, ticket.Assignments)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestRemoveNotAssigned(t *testing.T) {
	_, err := RemoveEmployee(openTicket(), "ghost", time.Now())
	require.Error(t, err)
	assert.Equal(t, "NOT_ASSIGNED", apperrors.ToDomainError(err).Code)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	dir := supportDirectory(
		employee("e-1", "Avery", "support"),
		employee("e-2", "Blake", "support"),
	)
	workload := &fakeWorkload{counts: map[string]int{}}
	now := time.Now()

	ticket, err := AddEmployee(context.Background(), dir, workload, openTicket(), "e-1", now)
	require.NoError(t, err)
	ticket, err = AddEmployee(context.Background(), dir, workload, ticket, "e-2", now)
	require.NoError(t, err)
	ticket, err = RemoveEmployee(ticket, "e-1", now)
	require.NoError(t, err)

	require.Len(t, ticket.Assignments, 1)
	assert.Equal(t, "e-2", ticket.Assignments[0].EmployeeID)
	assert.True(t, ticket.Assignments[0].IsPrimary)

	ticket, err = RemoveEmployee(ticket, "e-2", now)
	require.NoError(t, err)
	assert.Empty(t, ticket.Assignments)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.True(t, CheckPrimaryInvariant(&ticket))
}
