package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/notifications"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateTenantRequest struct {
	Code         string   `json:"code" validate:"required,min=2,max=50"`
	Name         string   `json:"name" validate:"required,min=3"`
	Status       string   `json:"status" validate:"omitempty,oneof=active inactive trial"`
	Features     []string `json:"features"`
	ContactName  *string  `json:"contact_name"`
	ContactEmail *string  `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string  `json:"contact_phone"`
	Address      *string  `json:"address"`
}

type UpdateTenantRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=3"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
}

func parseFeatureTags(raw []string) ([]models.Feature, string) {
	var features []models.Feature
	for _, tag := range raw {
		f, ok := models.ParseFeature(tag)
		if !ok {
			return nil, tag
		}
		features = append(features, f)
	}
	return features, ""
}

func ListTenants(c *fiber.Ctx) error {
	var tenants []models.Tenant
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&tenants).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list tenants"})
	}

	type tenantWithFeatures struct {
		models.Tenant
		Features []models.Feature `json:"features"`
	}
	out := make([]tenantWithFeatures, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, tenantWithFeatures{Tenant: t, Features: t.EnabledFeatures()})
	}
	return c.JSON(fiber.Map{"tenants": out, "total": len(out)})
}

func CreateTenant(c *fiber.Ctx) error {
	var req CreateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	features, bad := parseFeatureTags(req.Features)
	if bad != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown feature tag: " + bad})
	}

	tenant := models.Tenant{
		Code:         req.Code,
		Name:         req.Name,
		Status:       models.TenantStatusTrial,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	}
	if req.Status != "" {
		tenant.Status = req.Status
	}
	tenant.SetFeatures(features)

	if err := database.DB.Create(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Tenant code already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tenant"})
	}

	log.Printf("✅ Tenant %s (%s) created", tenant.Name, tenant.Code)
	return c.Status(fiber.StatusCreated).JSON(tenant)
}

func GetTenant(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tenant": tenant, "features": tenant.EnabledFeatures()})
}

func UpdateTenant(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}

	var req UpdateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.ContactName != nil {
		tenant.ContactName = req.ContactName
	}
	if req.ContactEmail != nil {
		tenant.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != nil {
		tenant.ContactPhone = req.ContactPhone
	}
	if req.Address != nil {
		tenant.Address = req.Address
	}

	if err := database.DB.Save(tenant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tenant"})
	}
	return c.JSON(tenant)
}

func UpdateTenantStatus(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=active inactive trial"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tenant.Status = req.Status
	if err := database.DB.Save(tenant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
	}
	return c.JSON(tenant)
}

func UpdateTenantFeatures(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}

	var req struct {
		Features []string `json:"features" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	features, bad := parseFeatureTags(req.Features)
	if bad != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown feature tag: " + bad})
	}

	tenant.SetFeatures(features)
	if err := database.DB.Save(tenant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update features"})
	}
	return c.JSON(fiber.Map{"tenant": tenant, "features": tenant.EnabledFeatures()})
}

// CreateTenantAdmin provisions the school_admin account for a tenant.
func CreateTenantAdmin(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}

	var req struct {
		Username string `json:"username" validate:"required,min=3"`
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"required,min=3"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hashedPassword),
		Role:     models.RoleSchoolAdmin,
		TenantID: &tenant.ID,
		IsActive: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username or email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create admin account"})
	}

	go notifications.SendStaffWelcome(user.FullName, user.Email, user.Username, tenant.Name)
	return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
}

// DeleteTenant removes a tenant and everything under it. The cascade runs
// in one transaction; dependent records are never orphaned.
func DeleteTenant(c *fiber.Ctx) error {
	tenant, err := loadTenant(c)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Charges hang off fee records rather than the tenant directly.
		feeRecordIDs := tx.Model(&models.FeeRecord{}).Select("id").Where("tenant_id = ?", tenant.ID)
		if err := tx.Where("fee_record_id IN (?)", feeRecordIDs).Delete(&models.FeeCharge{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.FeePayment{}, &models.FeeRecord{}, &models.AttendanceRecord{},
			&models.ExamResult{}, &models.DiscountPolicy{}, &models.Student{},
			&models.Family{}, &models.User{},
		} {
			if err := tx.Where("tenant_id = ?", tenant.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(tenant).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete tenant"})
	}

	log.Printf("Tenant %s (%s) deleted with all dependent records", tenant.ID, tenant.Code)
	return c.JSON(fiber.Map{"message": "Tenant deleted"})
}

// PlatformStats backs the super-admin console dashboard.
func PlatformStats(c *fiber.Ctx) error {
	var totalTenants, activeTenants, totalStudents, totalStaff int64
	database.DB.Model(&models.Tenant{}).Count(&totalTenants)
	database.DB.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&activeTenants)
	database.DB.Model(&models.Student{}).Where("is_active = ?", true).Count(&totalStudents)
	database.DB.Model(&models.User{}).Where("role <> ?", models.RoleSuperAdmin).Count(&totalStaff)

	return c.JSON(fiber.Map{
		"total_tenants":  totalTenants,
		"active_tenants": activeTenants,
		"total_students": totalStudents,
		"total_staff":    totalStaff,
	})
}

func loadTenant(c *fiber.Ctx) (*models.Tenant, error) {
	id, err := uuid.Parse(c.Params("tenantId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tenant id"})
	}

	var tenant models.Tenant
	if err := database.DB.First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tenant not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return &tenant, nil
}
