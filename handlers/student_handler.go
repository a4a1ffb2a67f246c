package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"gorm.io/gorm"
)

type StudentRequest struct {
	FirstName  string `json:"first_name" validate:"required,min=2"`
	LastName   string `json:"last_name" validate:"required,min=2"`
	RollNumber string `json:"roll_number" validate:"required"`
	ClassName  string `json:"class_name" validate:"required"`
	Section    string `json:"section"`
	Subjects   string `json:"subjects"`

	FatherName   *string `json:"father_name"`
	FatherMobile *string `json:"father_mobile"`
	MotherName   *string `json:"mother_name"`
	MotherMobile *string `json:"mother_mobile"`

	AdmissionDate time.Time `json:"admission_date" validate:"required"`

	IsStaffChild     bool       `json:"is_staff_child"`
	StaffParentID    *uuid.UUID `json:"staff_parent_id"`
	DiscountCategory string     `json:"discount_category" validate:"omitempty,oneof=none merit financial_aid"`
}

func CreateStudent(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required to create students"})
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var duplicate int64
	database.DB.Model(&models.Student{}).
		Where("tenant_id = ? AND class_name = ? AND section = ? AND roll_number = ? AND is_active = ?",
			res.TenantID, req.ClassName, req.Section, req.RollNumber, true).
		Count(&duplicate)
	if duplicate > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Roll number already taken in this class/section"})
	}

	student := models.Student{
		TenantID:         res.TenantID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		RollNumber:       req.RollNumber,
		ClassName:        req.ClassName,
		Section:          req.Section,
		Subjects:         req.Subjects,
		FatherName:       req.FatherName,
		FatherMobile:     req.FatherMobile,
		MotherName:       req.MotherName,
		MotherMobile:     req.MotherMobile,
		AdmissionDate:    req.AdmissionDate,
		IsStaffChild:     req.IsStaffChild,
		StaffParentID:    req.StaffParentID,
		DiscountCategory: models.DiscountCategoryNone,
		IsActive:         true,
	}
	if req.DiscountCategory != "" {
		student.DiscountCategory = req.DiscountCategory
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}
	return c.Status(fiber.StatusCreated).JSON(student)
}

func ListStudents(c *fiber.Ctx) error {
	var students []models.Student
	query := database.DB.Scopes(middleware.TenantScope(c)).Where("is_active = ?", true)

	if class := c.Query("class"); class != "" {
		query = query.Where("class_name = ?", class)
	}
	if section := c.Query("section"); section != "" {
		query = query.Where("section = ?", section)
	}

	if err := query.Order("class_name, section, roll_number").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list students"})
	}
	return c.JSON(fiber.Map{"students": students, "total": len(students)})
}

func GetStudent(c *fiber.Ctx) error {
	student, err := loadStudent(c)
	if err != nil {
		return err
	}
	return c.JSON(student)
}

func UpdateStudent(c *fiber.Ctx) error {
	student, err := loadStudent(c)
	if err != nil {
		return err
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.RollNumber = req.RollNumber
	student.ClassName = req.ClassName
	student.Section = req.Section
	student.Subjects = req.Subjects
	student.FatherName = req.FatherName
	student.FatherMobile = req.FatherMobile
	student.MotherName = req.MotherName
	student.MotherMobile = req.MotherMobile
	student.AdmissionDate = req.AdmissionDate
	student.IsStaffChild = req.IsStaffChild
	student.StaffParentID = req.StaffParentID
	if req.DiscountCategory != "" {
		student.DiscountCategory = req.DiscountCategory
	}

	if err := database.DB.Save(student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}
	return c.JSON(student)
}

// DeactivateStudent soft-retires a student; family ordinals shift on the
// next recompute, not here.
func DeactivateStudent(c *fiber.Ctx) error {
	student, err := loadStudent(c)
	if err != nil {
		return err
	}

	student.IsActive = false
	if err := database.DB.Save(student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate student"})
	}
	return c.JSON(fiber.Map{"message": "Student deactivated"})
}

func loadStudent(c *fiber.Ctx) (*models.Student, error) {
	id, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var student models.Student
	query := database.DB.Scopes(middleware.TenantScope(c))
	if err := query.First(&student, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return &student, nil
}
