package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/services"
	"gorm.io/gorm"
)

// DetectSiblings returns confirmed family groups plus mobile-number
// suggestions awaiting human confirmation.
func DetectSiblings(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required for sibling detection"})
	}

	detection, err := services.DetectSiblings(database.DB, res.TenantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sibling detection failed"})
	}
	return c.JSON(detection)
}

type LinkSiblingsRequest struct {
	StudentIDs     []uuid.UUID `json:"student_ids" validate:"required,min=2"`
	GuardianName   string      `json:"guardian_name"`
	GuardianMobile string      `json:"guardian_mobile"`
	MotherName     string      `json:"mother_name"`
	MotherMobile   string      `json:"mother_mobile"`
	Address        string      `json:"address"`
}

// LinkSiblings confirms a sibling group into one family.
func LinkSiblings(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required to link siblings"})
	}

	var req LinkSiblingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	family, err := services.LinkSiblings(database.DB, res.TenantID, req.StudentIDs, services.FamilyMeta{
		GuardianName:   req.GuardianName,
		GuardianMobile: req.GuardianMobile,
		MotherName:     req.MotherName,
		MotherMobile:   req.MotherMobile,
		Address:        req.Address,
	})
	if err != nil {
		if errors.Is(err, services.ErrTooFewSiblings) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var members []models.Student
	database.DB.Where("family_id = ?", family.ID).Order("sibling_position").Find(&members)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"family": family, "members": members})
}

func ListFamilies(c *fiber.Ctx) error {
	var families []models.Family
	query := database.DB.Scopes(middleware.TenantScope(c)).Order("guardian_name")
	if err := query.Find(&families).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list families"})
	}
	return c.JSON(fiber.Map{"families": families, "total": len(families)})
}

func GetFamily(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("familyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid family id"})
	}

	var family models.Family
	query := database.DB.Scopes(middleware.TenantScope(c)).Preload("Students")
	if err := query.First(&family, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Family not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(family)
}

// UnlinkStudent detaches one student from their family and recomputes the
// remaining ordinals.
func UnlinkStudent(c *fiber.Ctx) error {
	student, err := loadStudent(c)
	if err != nil {
		return err
	}
	if student.FamilyID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Student is not linked to a family"})
	}

	familyID := *student.FamilyID
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Student{}).Where("id = ?", student.ID).
			Updates(map[string]interface{}{"family_id": nil, "sibling_position": 0}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlink student"})
	}

	if err := services.RecomputeSiblingPositions(database.DB, familyID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to recompute sibling positions"})
	}
	return c.JSON(fiber.Map{"message": "Student unlinked"})
}
