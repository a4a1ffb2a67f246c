package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", handlers.LoginStaff)
	auth.Post("/superadmin/login", handlers.LoginSuperAdmin)

	auth.Get("/me", middleware.Protected(), middleware.WithTenant(), handlers.Me)

	auth.Post("/impersonate/stop",
		middleware.Protected(), middleware.WithTenant(), middleware.SuperAdminRequired(),
		handlers.StopImpersonation)
	auth.Post("/impersonate/:tenantId",
		middleware.Protected(), middleware.WithTenant(), middleware.SuperAdminRequired(),
		handlers.Impersonate)
}
