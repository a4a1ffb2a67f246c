package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kasozi256/schooldesk/handlers"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
)

func FeeRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	fees := api.Group("/fees",
		middleware.Protected(), middleware.WithTenant(),
		middleware.FeatureRequired(models.FeatureFees),
		middleware.RoleRequired(models.RoleSchoolAdmin, models.RoleAccountant, models.RoleCashier))

	policies := fees.Group("/policies")
	policies.Get("", handlers.ListDiscountPolicies)
	policies.Post("", handlers.CreateDiscountPolicy)
	policies.Delete("/:policyId", handlers.DeactivateDiscountPolicy)

	records := fees.Group("/records")
	records.Get("", handlers.ListFeeRecords)
	records.Post("", handlers.CreateFeeRecord)
	records.Get("/:feeRecordId", handlers.GetFeeRecord)
	records.Post("/:feeRecordId/payments", handlers.RecordPayment)
}
