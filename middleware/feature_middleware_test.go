package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureAllowedCoreAlwaysPasses(t *testing.T) {
	tenant := &models.Tenant{}

	assert.True(t, FeatureAllowed(models.RoleTeacher, tenant, models.FeatureCore))
	assert.True(t, FeatureAllowed(models.RoleTeacher, nil, models.FeatureCore))
}

func TestFeatureAllowedSuperAdminBypassesTenant(t *testing.T) {
	assert.True(t, FeatureAllowed(models.RoleSuperAdmin, nil, models.FeatureExams))
}

func TestFeatureAllowedChecksEnabledSet(t *testing.T) {
	tenant := &models.Tenant{}
	tenant.SetFeatures([]models.Feature{models.FeatureCore, models.FeatureFees})

	assert.True(t, FeatureAllowed(models.RoleTeacher, tenant, models.FeatureFees))
	assert.False(t, FeatureAllowed(models.RoleTeacher, tenant, models.FeatureExams))
	assert.False(t, FeatureAllowed(models.RoleTeacher, nil, models.FeatureFees))
}

// featureTestApp wires FeatureRequired behind stand-ins for Protected and
// WithTenant so the gate can be exercised without issuing real tokens.
func featureTestApp(role models.Role, res TenantResolution, feature models.Feature) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"role": string(role)}})
		c.Locals("tenant_resolution", res)
		return c.Next()
	})
	app.Get("/gated", FeatureRequired(feature), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestFeatureRequiredRejectsWithUpgradePrompt(t *testing.T) {
	database.DB = database.ConnectTestDB(t)

	tenant := models.Tenant{Code: "GHS", Name: "Greenhill", Status: models.TenantStatusActive}
	tenant.SetFeatures([]models.Feature{models.FeatureCore, models.FeatureFees})
	require.NoError(t, database.DB.Create(&tenant).Error)

	app := featureTestApp(models.RoleTeacher,
		TenantResolution{TenantID: tenant.ID, Source: TenantSourceExplicit},
		models.FeatureExams)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "exams", body["missing_feature"])
	assert.Equal(t, true, body["upgrade_required"])
}

func TestFeatureRequiredPassesEnabledFeature(t *testing.T) {
	database.DB = database.ConnectTestDB(t)

	tenant := models.Tenant{Code: "GHS", Name: "Greenhill", Status: models.TenantStatusActive}
	tenant.SetFeatures([]models.Feature{models.FeatureCore, models.FeatureFees})
	require.NoError(t, database.DB.Create(&tenant).Error)

	app := featureTestApp(models.RoleAccountant,
		TenantResolution{TenantID: tenant.ID, Source: TenantSourceExplicit},
		models.FeatureFees)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFeatureRequiredSuperAdminSkipsLookup(t *testing.T) {
	database.DB = database.ConnectTestDB(t)

	// No tenant row at all; the super-admin bypass must not touch the DB.
	app := featureTestApp(models.RoleSuperAdmin,
		TenantResolution{Source: TenantSourceNone, Unscoped: true},
		models.FeatureReports)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFeatureRequiredLegacyScopedCallerGetsUpgradePrompt(t *testing.T) {
	database.DB = database.ConnectTestDB(t)

	// Degraded resolution points at a legacy school id with no tenant row.
	app := featureTestApp(models.RoleSchoolAdmin,
		TenantResolution{TenantID: uuid.New(), Source: TenantSourceLegacy, Degraded: true},
		models.FeatureAttendance)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
