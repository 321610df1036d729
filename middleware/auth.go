package middleware

import (
	"strings"

	"guild-review-system/utils"

	"github.com/gofiber/fiber/v2"
)

// Permission tiers, ordered. A higher tier includes everything below it:
// founder ⊇ mentor ⊇ member. Modeled as an ordered lookup, not a role
// hierarchy.
const (
	TierNone    = 0
	TierMember  = 1
	TierMentor  = 2
	TierFounder = 3
)

// UserContextMiddleware resolves the caller's identity and permission tier
// from the headers the adapter forwards: X-User-ID is the chat platform's
// user ID and X-User-Roles its comma-separated role IDs, mapped onto tiers
// via the configured role map.
func UserContextMiddleware(roles utils.RoleMap) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID header",
			})
		}

		tier := TierNone
		for _, roleID := range strings.Split(c.Get("X-User-Roles"), ",") {
			roleID = strings.TrimSpace(roleID)
			if roleID == "" {
				continue
			}
			t := TierNone
			switch roleID {
			case roles.FounderID:
				t = TierFounder
			case roles.MentorID:
				t = TierMentor
			case roles.MemberID:
				t = TierMember
			}
			if t > tier {
				tier = t
			}
		}

		c.Locals("external_id", userID)
		c.Locals("tier", tier)
		return c.Next()
	}
}

// RequireTier rejects callers below the given tier.
func RequireTier(minTier int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tier, _ := c.Locals("tier").(int)
		if tier < minTier {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient permissions",
			})
		}
		return c.Next()
	}
}

// ExternalID returns the caller identity attached by UserContextMiddleware.
func ExternalID(c *fiber.Ctx) string {
	id, _ := c.Locals("external_id").(string)
	return id
}

// Tier returns the caller's permission tier.
func Tier(c *fiber.Ctx) int {
	tier, _ := c.Locals("tier").(int)
	return tier
}
