package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/opsdesk/internal/domain"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

func newTestActorService(actors *fakeActorStore) *ActorService {
	return NewActorService(ActorDependencies{
		ActorRepo:  actors,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestAdminCreatesEmployee(t *testing.T) {
	actors := newFakeActorStore()
	svc := newTestActorService(actors)

	created, err := svc.CreateActor(context.Background(), adminActor(), ActorCreateInput{
		Name:       "Avery",
		Email:      "avery@example.com",
		Password:   "hunter2!",
		Role:       domain.RoleEmployee,
		Department: "support",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleEmployee, created.Role)
	assert.Equal(t, "support", created.Department)
	assert.Nil(t, created.Tenant)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "hunter2!", created.PasswordHash)
}

func TestAdminCreatesClientWithCompany(t *testing.T) {
	actors := newFakeActorStore()
	svc := newTestActorService(actors)

	created, err := svc.CreateActor(context.Background(), adminActor(), ActorCreateInput{
		Name:        "Acme Admin",
		Email:       "owner@acme.example",
		Password:    "hunter2!",
		Role:        domain.RoleClient,
		CompanyCode: "ACME",
		CompanyName: "Acme Inc",
	})
	require.NoError(t, err)

	require.NotNil(t, created.Tenant)
	assert.Equal(t, "ACME", created.Tenant.CompanyCode)
	assert.Equal(t, "Acme Inc", created.Tenant.CompanyName)
}

func TestClientCreatesClientUserScopedToOwnCompany(t *testing.T) {
	actors := newFakeActorStore()
	svc := newTestActorService(actors)
	client := acmeClient()

	// Input company code is ignored; the creator's company wins.
	created, err := svc.CreateActor(context.Background(), client, ActorCreateInput{
		Name:        "Acme User",
		Email:       "user@acme.example",
		Password:    "hunter2!",
		Role:        domain.RoleClientUser,
		CompanyCode: "GLOBEX",
	})
	require.NoError(t, err)

	require.NotNil(t, created.Tenant)
	assert.Equal(t, "ACME", created.Tenant.CompanyCode)
	require.NotNil(t, created.Tenant.CreatedByClient)
	assert.Equal(t, client.ID, *created.Tenant.CreatedByClient)
}

func TestRoleCreationMatrixForbidden(t *testing.T) {
	actors := newFakeActorStore()
	svc := newTestActorService(actors)

	cases := []struct {
		name    string
		creator *domain.Actor
		role    domain.Role
	}{
		{"admin cannot create admin", adminActor(), domain.RoleAdmin},
		{"admin cannot create client_user", adminActor(), domain.RoleClientUser},
		{"client cannot create employee", acmeClient(), domain.RoleEmployee},
		{"client cannot create client", acmeClient(), domain.RoleClient},
		{"employee creates nobody", &domain.Actor{ID: "e-1", Role: domain.RoleEmployee, IsActive: true}, domain.RoleClientUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateActor(context.Background(), tc.creator, ActorCreateInput{
				Name: "x", Email: "x@example.com", Password: "p", Role: tc.role,
			})
			require.Error(t, err)
			assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestCreateActorDuplicateEmail(t *testing.T) {
	actors := newFakeActorStore(domain.Actor{
		ID: "existing", Email: "taken@example.com", Role: domain.RoleEmployee, IsActive: true,
	})
	svc := newTestActorService(actors)

	_, err := svc.CreateActor(context.Background(), adminActor(), ActorCreateInput{
		Name:       "Dup",
		Email:      "taken@example.com",
		Password:   "hunter2!",
		Role:       domain.RoleEmployee,
		Department: "support",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCreateEmployeeRequiresDepartment(t *testing.T) {
	actors := newFakeActorStore()
	svc := newTestActorService(actors)

	_, err := svc.CreateActor(context.Background(), adminActor(), ActorCreateInput{
		Name:     "No Dept",
		Email:    "nodept@example.com",
		Password: "hunter2!",
		Role:     domain.RoleEmployee,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestDeactivateRespectsManagementRules(t *testing.T) {
	client := acmeClient()
	created := domain.Actor{
		ID: "cu-1", Role: domain.RoleClientUser, IsActive: true,
		Tenant: &domain.TenantInfo{CompanyCode: "ACME", CreatedByClient: &client.ID},
	}
	foreign := domain.Actor{
		ID: "cu-2", Role: domain.RoleClientUser, IsActive: true,
		Tenant: &domain.TenantInfo{CompanyCode: "GLOBEX"},
	}
	actors := newFakeActorStore(created, foreign)
	svc := newTestActorService(actors)

	target, err := svc.Deactivate(context.Background(), client, "cu-1")
	require.NoError(t, err)
	assert.False(t, target.IsActive)

	_, err = svc.Deactivate(context.Background(), client, "cu-2")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = svc.Deactivate(context.Background(), adminActor(), "cu-2")
	require.NoError(t, err)
}
