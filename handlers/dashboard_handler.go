package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

// SchoolDashboard aggregates the numbers the school admin landing page
// shows. All queries stay inside the caller's tenant.
func SchoolDashboard(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required"})
	}

	var totalStudents, totalStaff, linkedFamilies int64
	database.DB.Model(&models.Student{}).
		Where("tenant_id = ? AND is_active = ?", res.TenantID, true).Count(&totalStudents)
	database.DB.Model(&models.User{}).
		Where("tenant_id = ? AND is_active = ?", res.TenantID, true).Count(&totalStaff)
	database.DB.Model(&models.Family{}).
		Where("tenant_id = ?", res.TenantID).Count(&linkedFamilies)

	type feeTotals struct {
		Billed    float64
		Collected float64
	}
	var fees feeTotals
	database.DB.Model(&models.FeeRecord{}).
		Select("COALESCE(SUM(net_amount),0) as billed, COALESCE(SUM(paid_amount),0) as collected").
		Where("tenant_id = ?", res.TenantID).
		Scan(&fees)

	var overdueCount int64
	database.DB.Model(&models.FeeRecord{}).
		Where("tenant_id = ? AND overdue = ?", res.TenantID, true).Count(&overdueCount)

	// Today's attendance rate.
	today := time.Now().Truncate(24 * time.Hour)
	var markedToday, presentToday int64
	database.DB.Model(&models.AttendanceRecord{}).
		Where("tenant_id = ? AND date = ?", res.TenantID, today).Count(&markedToday)
	database.DB.Model(&models.AttendanceRecord{}).
		Where("tenant_id = ? AND date = ? AND status = ?", res.TenantID, today, models.AttendancePresent).
		Count(&presentToday)

	attendanceRate := 0.0
	if markedToday > 0 {
		attendanceRate = float64(presentToday) / float64(markedToday) * 100
	}

	collectionRate := 0.0
	if fees.Billed > 0 {
		collectionRate = fees.Collected / fees.Billed * 100
	}

	return c.JSON(fiber.Map{
		"total_students":      totalStudents,
		"total_staff":         totalStaff,
		"linked_families":     linkedFamilies,
		"fees_billed":         fees.Billed,
		"fees_collected":      fees.Collected,
		"fee_collection_rate": collectionRate,
		"overdue_fee_records": overdueCount,
		"attendance_rate":     attendanceRate,
	})
}
