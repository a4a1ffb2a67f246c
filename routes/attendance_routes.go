package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func AttendanceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	attendance := api.Group("/attendance",
		middleware.Protected(), middleware.WithTenant(),
		middleware.FeatureRequired(models.FeatureAttendance))

	attendance.Get("", handlers.ListAttendance)
	attendance.Post("",
		middleware.RoleRequired(models.RoleSchoolAdmin, models.RoleTeacher),
		handlers.MarkAttendance)
}
