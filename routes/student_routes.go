package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	students := api.Group("/students", middleware.Protected(), middleware.WithTenant())

	students.Get("", handlers.ListStudents)
	students.Get("/:studentId", handlers.GetStudent)
	students.Get("/:studentId/discounts", handlers.PreviewDiscounts)

	write := students.Group("",
		middleware.RoleRequired(models.RoleSchoolAdmin, models.RoleReceptionist))
	write.Post("", handlers.CreateStudent)
	write.Put("/:studentId", handlers.UpdateStudent)
	write.Delete("/:studentId", handlers.DeactivateStudent)
	write.Put("/:studentId/photo", handlers.SetStudentPhoto)
}
