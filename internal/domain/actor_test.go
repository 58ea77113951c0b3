package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorValidateTenantCoupling(t *testing.T) {
	staff := Actor{Role: RoleEmployee, Department: "support"}
	assert.NoError(t, staff.Validate())

	staffWithTenant := Actor{Role: RoleAdmin, Tenant: &TenantInfo{CompanyCode: "ACME"}}
	assert.ErrorIs(t, staffWithTenant.Validate(), ErrUnexpectedCompany)

	client := Actor{Role: RoleClient, Tenant: &TenantInfo{CompanyCode: "ACME"}}
	assert.NoError(t, client.Validate())

	clientNoTenant := Actor{Role: RoleClientUser}
	assert.ErrorIs(t, clientNoTenant.Validate(), ErrMissingCompany)

	clientEmptyCode := Actor{Role: RoleClient, Tenant: &TenantInfo{}}
	assert.ErrorIs(t, clientEmptyCode.Validate(), ErrMissingCompany)

	unknown := Actor{Role: Role("superuser")}
	assert.ErrorIs(t, unknown.Validate(), ErrUnknownRole)
}

func TestCompanyCodeEmptyForStaff(t *testing.T) {
	staff := Actor{Role: RoleAdmin}
	assert.Equal(t, "", staff.CompanyCode())

	client := Actor{Role: RoleClient, Tenant: &TenantInfo{CompanyCode: "ACME"}}
	assert.Equal(t, "ACME", client.CompanyCode())
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleEmployee.IsStaff())
	assert.False(t, RoleClient.IsStaff())
	assert.True(t, RoleClient.IsTenant())
	assert.True(t, RoleClientUser.IsTenant())
	assert.False(t, Role("superuser").Valid())
}
