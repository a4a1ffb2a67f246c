package middleware

import (
	config "github.com/kasozi256/schooldesk/configs"
	"github.com/kasozi256/schooldesk/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Protected verifies the bearer token on the request and stores the parsed
// token under c.Locals("user"). Verification is stateless; a rejected token
// means the caller must re-authenticate.
func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// TokenClaims reads the claims jwtware stored on the request.
func TokenClaims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

// CallerID returns the authenticated user's id from the token claims.
func CallerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := TokenClaims(c)["user_id"].(string)
	return uuid.Parse(raw)
}

// CallerRole returns the caller's role; unknown role strings collapse to no
// role at all rather than to a permissive default.
func CallerRole(c *fiber.Ctx) models.Role {
	raw, _ := TokenClaims(c)["role"].(string)
	role, ok := models.ParseRole(raw)
	if !ok {
		return ""
	}
	return role
}

// IsImpersonating reports whether this session was started through the
// super-admin impersonation endpoint.
func IsImpersonating(c *fiber.Ctx) bool {
	imp, _ := TokenClaims(c)["impersonating"].(bool)
	return imp
}

// RoleRequired allows only the given roles through. Super-admin always
// passes, matching Role.OneOf.
func RoleRequired(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CallerRole(c).OneOf(allowed...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: insufficient role",
			})
		}
		return c.Next()
	}
}

// SuperAdminRequired gates the tenant-management console.
func SuperAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CallerRole(c).IsSuperAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: super admin access required",
			})
		}
		return c.Next()
	}
}
