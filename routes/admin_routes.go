package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
)

// AdminRoutes is the super-admin tenant-management console.
func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin",
		middleware.Protected(), middleware.WithTenant(), middleware.SuperAdminRequired())

	admin.Get("/stats", handlers.PlatformStats)

	tenants := admin.Group("/tenants")
	tenants.Get("", handlers.ListTenants)
	tenants.Post("", handlers.CreateTenant)
	tenants.Get("/:tenantId", handlers.GetTenant)
	tenants.Put("/:tenantId", handlers.UpdateTenant)
	tenants.Put("/:tenantId/status", handlers.UpdateTenantStatus)
	tenants.Put("/:tenantId/features", handlers.UpdateTenantFeatures)
	tenants.Post("/:tenantId/admins", handlers.CreateTenantAdmin)
	tenants.Delete("/:tenantId", handlers.DeleteTenant)
}
