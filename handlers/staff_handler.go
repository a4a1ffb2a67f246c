package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/notifications"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateStaffRequest struct {
	Username    string  `json:"username" validate:"required,min=3"`
	Email       string  `json:"email" validate:"required,email"`
	FullName    string  `json:"full_name" validate:"required,min=3"`
	Password    string  `json:"password" validate:"required,min=6"`
	Role        string  `json:"role" validate:"required,oneof=school_admin teacher accountant cashier receptionist librarian transport_manager"`
	Permissions string  `json:"permissions"`
	Phone       *string `json:"phone"`
}

// CreateStaff adds a staff account under the caller's tenant. super_admin
// is deliberately not an accepted role here: cross-tenant operators are
// only provisioned through the platform console bootstrap.
func CreateStaff(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required to create staff"})
	}

	var req CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	role, _ := models.ParseRole(req.Role)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	tenantID := res.TenantID
	user := models.User{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Password:    string(hashedPassword),
		Role:        role,
		Permissions: req.Permissions,
		Phone:       req.Phone,
		TenantID:    &tenantID,
		IsActive:    true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username or email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create staff account"})
	}

	var tenant models.Tenant
	if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err == nil {
		go notifications.SendStaffWelcome(user.FullName, user.Email, user.Username, tenant.Name)
	}

	return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
}

func ListStaff(c *fiber.Ctx) error {
	var users []models.User
	query := database.DB.Scopes(middleware.TenantScope(c)).
		Where("role <> ?", models.RoleSuperAdmin).
		Order("full_name")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list staff"})
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"staff": out, "total": len(out)})
}

// ToggleStaffStatus flips a staff account's active flag. A deactivated
// account keeps its records but can no longer authenticate.
func ToggleStaffStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var user models.User
	query := database.DB.Scopes(middleware.TenantScope(c)).Where("role <> ?", models.RoleSuperAdmin)
	if err := query.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Staff account not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if user.ID == middleware.CurrentUser(c).ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot deactivate your own account"})
	}

	user.IsActive = !user.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update staff account"})
	}
	return c.JSON(fiber.Map{"user": userResponse(&user), "is_active": user.IsActive})
}
