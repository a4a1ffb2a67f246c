package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func FamilyRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	families := api.Group("/families", middleware.Protected(), middleware.WithTenant())

	families.Get("", handlers.ListFamilies)
	families.Get("/detect", handlers.DetectSiblings)
	families.Get("/:familyId", handlers.GetFamily)

	write := families.Group("",
		middleware.RoleRequired(models.RoleSchoolAdmin, models.RoleAccountant, models.RoleReceptionist))
	write.Post("/link", handlers.LinkSiblings)
	write.Post("/students/:studentId/unlink", handlers.UnlinkStudent)
}
