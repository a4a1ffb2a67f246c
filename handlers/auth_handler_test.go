package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	database.DB = database.ConnectTestDB(t)

	app := fiber.New()
	api := app.Group("/api/v1/auth")
	api.Post("/login", LoginStaff)
	api.Post("/superadmin/login", LoginSuperAdmin)
	return app
}

func createAccount(t *testing.T, role models.Role, username, password string, active bool) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	tenantID := uuid.New()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test Account",
		Password: string(hashed),
		Role:     role,
		IsActive: active,
	}
	if role != models.RoleSuperAdmin {
		user.TenantID = &tenantID
	}
	require.NoError(t, database.DB.Create(user).Error)
	if !active {
		// GORM substitutes the column default (true) for zero-value
		// fields on insert, so deactivation needs an explicit update.
		require.NoError(t, database.DB.Model(user).Update("is_active", false).Error)
	}
	return user
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	if len(bodyBytes) > 0 {
		require.NoError(t, json.Unmarshal(bodyBytes, &body))
	}
	return resp, body
}

func TestLoginStaffSucceedsWithUsernameOrEmail(t *testing.T) {
	app := authTestApp(t)
	user := createAccount(t, models.RoleTeacher, "jnamale", "sekrit99", true)

	for _, identifier := range []string{"jnamale", "jnamale@example.com"} {
		resp, body := postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"identifier": identifier,
			"password":   "sekrit99",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])

		got := body["user"].(map[string]interface{})
		assert.Equal(t, user.ID.String(), got["id"])
		assert.Equal(t, "teacher", got["role"])
	}
}

func TestLoginStaffUnknownAndWrongPasswordAnswerIdentically(t *testing.T) {
	app := authTestApp(t)
	createAccount(t, models.RoleTeacher, "jnamale", "sekrit99", true)

	respUnknown, bodyUnknown := postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"identifier": "nobody",
		"password":   "sekrit99",
	})
	respWrong, bodyWrong := postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"identifier": "jnamale",
		"password":   "wrongpass",
	})

	assert.Equal(t, fiber.StatusUnauthorized, respUnknown.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, bodyUnknown["error"], bodyWrong["error"])
}

func TestLoginStaffDeactivatedAccountAnswersDistinctly(t *testing.T) {
	app := authTestApp(t)
	createAccount(t, models.RoleAccountant, "mkato", "sekrit99", false)

	// Correct password, deactivated account: 403, not the generic 401.
	resp, body := postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"identifier": "mkato",
		"password":   "sekrit99",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Account deactivated", body["error"])
}

func TestLoginStaffValidationErrors(t *testing.T) {
	app := authTestApp(t)

	resp, _ := postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"identifier": "jnamale",
		"password":   "shrt",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSuperAdminBootstrapRequiresSetupToken(t *testing.T) {
	app := authTestApp(t)
	t.Setenv("SUPER_ADMIN_SETUP_TOKEN", "provision-me")

	// No super-admin exists; without the token the platform stays unclaimed.
	resp, body := postJSON(t, app, "/api/v1/auth/superadmin/login", fiber.Map{
		"identifier": "root@example.com",
		"password":   "sekrit99",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "setup token")

	var count int64
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("role = ?", models.RoleSuperAdmin).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSuperAdminBootstrapWithSetupToken(t *testing.T) {
	app := authTestApp(t)
	t.Setenv("SUPER_ADMIN_SETUP_TOKEN", "provision-me")

	resp, body := postJSON(t, app, "/api/v1/auth/superadmin/login", fiber.Map{
		"identifier":  "root@example.com",
		"password":    "sekrit99",
		"setup_token": "provision-me",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	got := body["user"].(map[string]interface{})
	assert.Equal(t, string(models.RoleSuperAdmin), got["role"])
	assert.Nil(t, got["tenant_id"])

	// Second login takes the normal path; the setup token is no longer
	// consulted.
	resp, _ = postJSON(t, app, "/api/v1/auth/superadmin/login", fiber.Map{
		"identifier": "root@example.com",
		"password":   "sekrit99",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSuperAdminBootstrapRefusedWhenNoTokenConfigured(t *testing.T) {
	app := authTestApp(t)
	t.Setenv("SUPER_ADMIN_SETUP_TOKEN", "")

	// An empty configured token never matches, even an empty submission.
	resp, _ := postJSON(t, app, "/api/v1/auth/superadmin/login", fiber.Map{
		"identifier":  "root@example.com",
		"password":    "sekrit99",
		"setup_token": "",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSuperAdminLoginIgnoresStaffAccounts(t *testing.T) {
	app := authTestApp(t)
	createAccount(t, models.RoleSuperAdmin, "root", "sekrit99", true)
	createAccount(t, models.RoleSchoolAdmin, "headteacher", "sekrit99", true)

	// A school admin cannot sign in through the platform console.
	resp, _ := postJSON(t, app, "/api/v1/auth/superadmin/login", fiber.Map{
		"identifier": "headteacher",
		"password":   "sekrit99",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
