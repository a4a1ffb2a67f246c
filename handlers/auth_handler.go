package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/kasozi256/schooldesk/configs"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

const (
	staffTokenValidity         = 30 * 24 * time.Hour
	impersonationTokenValidity = 2 * time.Hour
)

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

type SuperAdminLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
	// SetupToken is only consulted on the very first login, when no
	// super-admin account exists yet and one is provisioned from these
	// credentials.
	SetupToken string `json:"setup_token"`
}

type UserResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     string     `json:"role"`
	TenantID *uuid.UUID `json:"tenant_id"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	}
}

// issueToken signs a session token. tenantID is nil for an unscoped
// super-admin session.
func issueToken(user *models.User, tenantID *uuid.UUID, impersonating bool, validity time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       user.ID.String(),
		"role":          string(user.Role),
		"impersonating": impersonating,
		"exp":           time.Now().Add(validity).Unix(),
	}
	if tenantID != nil {
		claims["tenant_id"] = tenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Config("JWT_SECRET")))
}

// LoginStaff authenticates a staff account by username or email. Unknown
// identifier and wrong password answer identically so accounts cannot be
// enumerated; a deactivated account answers distinctly even when the
// password is correct.
func LoginStaff(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	result := database.DB.Where("username = ? OR email = ?", req.Identifier, req.Identifier).First(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account deactivated"})
	}

	res := middleware.ResolveTenant(&user)
	var tenantID *uuid.UUID
	if !res.Unscoped {
		id := res.TenantID
		tenantID = &id
	}

	t, err := issueToken(&user, tenantID, false, staffTokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t, "user": userResponse(&user)})
}

// LoginSuperAdmin authenticates against the platform console. When no
// super-admin account exists yet, the submitted credentials provision one —
// but only with a matching one-time setup token, so the first caller to
// reach the endpoint cannot silently claim the platform.
func LoginSuperAdmin(c *fiber.Ctx) error {
	var req SuperAdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if count == 0 {
		return bootstrapSuperAdmin(c, req)
	}

	var user models.User
	result := database.DB.Where("role = ? AND (username = ? OR email = ?)",
		models.RoleSuperAdmin, req.Identifier, req.Identifier).First(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account deactivated"})
	}

	t, err := issueToken(&user, nil, false, staffTokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t, "user": userResponse(&user)})
}

func bootstrapSuperAdmin(c *fiber.Ctx, req SuperAdminLoginRequest) error {
	setupToken := config.Config("SUPER_ADMIN_SETUP_TOKEN")
	if setupToken == "" || req.SetupToken != setupToken {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Platform setup requires a valid setup token",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := models.User{
		Username: req.Identifier,
		Email:    req.Identifier,
		FullName: "Platform Administrator",
		Password: string(hashedPassword),
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to provision super admin"})
	}
	log.Printf("✅ Super admin account bootstrapped for %s", req.Identifier)

	t, err := issueToken(&user, nil, false, staffTokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": t, "user": userResponse(&user)})
}

// Me returns the caller's account and tenant resolution.
func Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	res := middleware.CurrentTenant(c)

	body := fiber.Map{
		"user":          userResponse(user),
		"tenant_source": res.Source,
		"impersonating": middleware.IsImpersonating(c),
	}
	if !res.Unscoped {
		body["tenant_id"] = res.TenantID
	}
	return c.JSON(body)
}

// Impersonate issues a short-lived token scoping a super-admin into one
// tenant for support work.
func Impersonate(c *fiber.Ctx) error {
	tenantID, err := uuid.Parse(c.Params("tenantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tenant id"})
	}

	var tenant models.Tenant
	if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tenant not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	user := middleware.CurrentUser(c)
	t, err := issueToken(user, &tenant.ID, true, impersonationTokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	log.Printf("Super admin %s impersonating tenant %s (%s)", user.ID, tenant.ID, tenant.Name)
	return c.JSON(fiber.Map{"token": t, "tenant": tenant, "expires_in": int(impersonationTokenValidity.Seconds())})
}

// StopImpersonation swaps an impersonation token back for an unscoped
// super-admin session.
func StopImpersonation(c *fiber.Ctx) error {
	if !middleware.IsImpersonating(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Not an impersonation session"})
	}

	user := middleware.CurrentUser(c)
	t, err := issueToken(user, nil, false, staffTokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	return c.JSON(fiber.Map{"token": t})
}
