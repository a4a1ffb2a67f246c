package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func StaffRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	staff := api.Group("/staff",
		middleware.Protected(), middleware.WithTenant(),
		middleware.RoleRequired(models.RoleSchoolAdmin))

	staff.Get("", handlers.ListStaff)
	staff.Post("", handlers.CreateStaff)
	staff.Put("/:userId/status", handlers.ToggleStaffStatus)
}
