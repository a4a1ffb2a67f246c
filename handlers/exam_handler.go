package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"gorm.io/gorm"
)

type ExamResultEntry struct {
	StudentID  uuid.UUID `json:"student_id" validate:"required"`
	Marks      float64   `json:"marks" validate:"gte=0"`
	MarksTotal float64   `json:"marks_total" validate:"required,gt=0"`
}

type RecordResultsRequest struct {
	ExamName string            `json:"exam_name" validate:"required"`
	Subject  string            `json:"subject" validate:"required"`
	Term     string            `json:"term" validate:"required"`
	Year     int               `json:"year" validate:"required,gte=2000"`
	Entries  []ExamResultEntry `json:"entries" validate:"required,min=1,dive"`
}

// gradeFor maps a percentage score onto a letter grade.
func gradeFor(percent float64) string {
	switch {
	case percent >= 80:
		return "A"
	case percent >= 70:
		return "B"
	case percent >= 60:
		return "C"
	case percent >= 50:
		return "D"
	case percent >= 40:
		return "E"
	default:
		return "F"
	}
}

// RecordResults stores a batch of marks for one exam paper.
func RecordResults(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required"})
	}

	var req RecordResultsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	recorder := middleware.CurrentUser(c)
	var results []models.ExamResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Entries {
			var count int64
			if err := tx.Model(&models.Student{}).
				Where("tenant_id = ? AND id = ?", res.TenantID, entry.StudentID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}

			result := models.ExamResult{
				TenantID:     res.TenantID,
				StudentID:    entry.StudentID,
				ExamName:     req.ExamName,
				Subject:      req.Subject,
				Term:         req.Term,
				Year:         req.Year,
				Marks:        entry.Marks,
				MarksTotal:   entry.MarksTotal,
				RecordedByID: recorder.ID,
			}
			result.Grade = gradeFor(result.Percent())

			if err := tx.Create(&result).Error; err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more students not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record results"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": results, "total": len(results)})
}

func ListResults(c *fiber.Ctx) error {
	var results []models.ExamResult
	query := database.DB.Scopes(middleware.TenantScope(c)).Preload("Student")

	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if exam := c.Query("exam"); exam != "" {
		query = query.Where("exam_name = ?", exam)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}

	if err := query.Order("created_at desc").Find(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list results"})
	}
	return c.JSON(fiber.Map{"results": results, "total": len(results)})
}
