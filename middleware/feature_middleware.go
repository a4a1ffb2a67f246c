package middleware

import (
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/gofiber/fiber/v2"
)

// FeatureAllowed is the gate predicate: super-admin always passes, the
// reserved core feature always passes, otherwise the tenant's enabled set
// must contain the tag. Pure, no hidden state.
func FeatureAllowed(role models.Role, tenant *models.Tenant, feature models.Feature) bool {
	if role.IsSuperAdmin() {
		return true
	}
	if feature == models.FeatureCore {
		return true
	}
	return tenant != nil && tenant.HasFeature(feature)
}

// FeatureRequired rejects requests for features the caller's tenant has not
// enabled, naming the missing feature so the client can show an upgrade
// prompt. Must run after WithTenant.
func FeatureRequired(feature models.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := CallerRole(c)
		if FeatureAllowed(role, nil, feature) {
			return c.Next()
		}

		res := CurrentTenant(c)
		var tenant models.Tenant
		if err := database.DB.First(&tenant, "id = ?", res.TenantID).Error; err != nil {
			// Legacy-scoped callers have no tenant row; nothing beyond
			// core can be gated open for them.
			return upgradeRequired(c, feature)
		}
		if !FeatureAllowed(role, &tenant, feature) {
			return upgradeRequired(c, feature)
		}
		return c.Next()
	}
}

func upgradeRequired(c *fiber.Ctx, feature models.Feature) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":            "Feature not enabled for this school",
		"missing_feature":  string(feature),
		"upgrade_required": true,
	})
}
