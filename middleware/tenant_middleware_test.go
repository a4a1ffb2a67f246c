package middleware

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
)

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestResolveTenantSuperAdminIsUnscoped(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleSuperAdmin}

	res := ResolveTenant(user)

	assert.True(t, res.Unscoped)
	assert.False(t, res.Degraded)
	assert.Equal(t, TenantSourceNone, res.Source)
	assert.Equal(t, uuid.Nil, res.TenantID)
}

func TestResolveTenantExplicitReferenceWins(t *testing.T) {
	tenantID := uuid.New()
	user := &models.User{
		ID:             uuid.New(),
		Role:           models.RoleTeacher,
		TenantID:       uuidPtr(tenantID),
		LegacySchoolID: uuidPtr(uuid.New()),
	}

	res := ResolveTenant(user)

	assert.Equal(t, tenantID, res.TenantID)
	assert.Equal(t, TenantSourceExplicit, res.Source)
	assert.False(t, res.Degraded)
	assert.False(t, res.Unscoped)
}

func TestResolveTenantFallsBackToLegacySchool(t *testing.T) {
	legacyID := uuid.New()
	user := &models.User{
		ID:             uuid.New(),
		Role:           models.RoleSchoolAdmin,
		LegacySchoolID: uuidPtr(legacyID),
	}

	res := ResolveTenant(user)

	assert.Equal(t, legacyID, res.TenantID)
	assert.Equal(t, TenantSourceLegacy, res.Source)
	assert.True(t, res.Degraded)
}

func TestResolveTenantNilUUIDReferencesAreSkipped(t *testing.T) {
	user := &models.User{
		ID:             uuid.New(),
		Role:           models.RoleTeacher,
		TenantID:       uuidPtr(uuid.Nil),
		LegacySchoolID: uuidPtr(uuid.Nil),
	}

	res := ResolveTenant(user)

	assert.Equal(t, user.ID, res.TenantID)
	assert.Equal(t, TenantSourceSelf, res.Source)
	assert.True(t, res.Degraded)
}

func TestResolveTenantAlwaysResolves(t *testing.T) {
	// The chain bottoms out at the user's own id; no input errors.
	user := &models.User{ID: uuid.New(), Role: models.RoleCashier}

	res := ResolveTenant(user)

	assert.Equal(t, user.ID, res.TenantID)
	assert.Equal(t, TenantSourceSelf, res.Source)
	assert.True(t, res.Degraded)
}
