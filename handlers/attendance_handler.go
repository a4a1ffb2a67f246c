package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"gorm.io/gorm"
)

type AttendanceEntry struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late excused"`
	Remark    *string   `json:"remark"`
}

type MarkAttendanceRequest struct {
	Date    time.Time         `json:"date" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// MarkAttendance records a day's register for a set of students. Marking
// the same student and date again overwrites the earlier entry.
func MarkAttendance(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required"})
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	marker := middleware.CurrentUser(c)
	day := req.Date.Truncate(24 * time.Hour)

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

			record := models.AttendanceRecord{
				TenantID:   res.TenantID,
				StudentID:  entry.StudentID,
				Date:       day,
				Status:     entry.Status,
				Remark:     entry.Remark,
				MarkedByID: marker.ID,
			}

			var existing models.AttendanceRecord
			err := tx.Where("tenant_id = ? AND student_id = ? AND date = ?",
				res.TenantID, entry.StudentID, day).First(&existing).Error
			if err == nil {
				existing.Status = entry.Status
				existing.Remark = entry.Remark
				existing.MarkedByID = marker.ID
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more students not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark attendance"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Attendance recorded", "count": len(req.Entries)})
}

func ListAttendance(c *fiber.Ctx) error {
	var records []models.AttendanceRecord
	query := database.DB.Scopes(middleware.TenantScope(c)).Preload("Student")

	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		query = query.Where("date = ?", day)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list attendance"})
	}
	return c.JSON(fiber.Map{"attendance": records, "total": len(records)})
}
