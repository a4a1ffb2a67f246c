package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
)

func DashboardRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/dashboard",
		middleware.Protected(), middleware.WithTenant(),
		handlers.SchoolDashboard)
}
