package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

func TestTransitionStampsResolvedAt(t *testing.T) {
	now := time.Now()
	ticket := domain.Ticket{Status: domain.TicketStatusInProgress}

	updated, err := Transition(ticket, domain.TicketStatusResolved, now)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, now, *updated.ResolvedAt)
	assert.Nil(t, updated.ClosedAt)
}

func TestTransitionStampsClosedAt(t *testing.T) {
	now := time.Now()
	ticket := domain.Ticket{Status: domain.TicketStatusResolved}

	updated, err := Transition(ticket, domain.TicketStatusClosed, now)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, now, *updated.ClosedAt)
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusOpen}

	updated, err := Transition(ticket, domain.TicketStatusOpen, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ticket, updated)
}

func TestTransitionDoesNotRestampResolvedAt(t *testing.T) {
	first := time.Now().Add(-time.Hour)
	ticket := domain.Ticket{Status: domain.TicketStatusOpen, ResolvedAt: &first}

	updated, err := Transition(ticket, domain.TicketStatusResolved, time.Now())
	require.NoError(t, err)

	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, first, *updated.ResolvedAt)
}

func TestReopenRetainsTimestamps(t *testing.T) {
	resolved := time.Now().Add(-2 * time.Hour)
	closed := time.Now().Add(-time.Hour)
	ticket := domain.Ticket{
		Status:     domain.TicketStatusClosed,
		ResolvedAt: &resolved,
		ClosedAt:   &closed,
	}

	updated, err := Transition(ticket, domain.TicketStatusOpen, time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, resolved, *updated.ResolvedAt)
	assert.Equal(t, closed, *updated.ClosedAt)
}

func TestTransitionAllPairsLegal(t *testing.T) {
	statuses := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			ticket := domain.Ticket{Status: from}
			updated, err := Transition(ticket, to, time.Now())
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, updated.Status)
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusOpen}

	_, err := Transition(ticket, domain.TicketStatus("ARCHIVED"), time.Now())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	assert.Equal(t, "OPEN", domainErr.Details["from"])
	assert.Equal(t, "ARCHIVED", domainErr.Details["to"])
}
