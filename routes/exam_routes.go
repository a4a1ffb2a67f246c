package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams",
		middleware.Protected(), middleware.WithTenant(),
		middleware.FeatureRequired(models.FeatureExams))

	exams.Get("/results", handlers.ListResults)
	exams.Post("/results",
		middleware.RoleRequired(models.RoleSchoolAdmin, models.RoleTeacher),
		handlers.RecordResults)
}
