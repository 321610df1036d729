package handlers

import (
	"errors"

	"guild-review-system/middleware"
	"guild-review-system/models"
	"guild-review-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes wires registration and guild management. All routes
// carry user context; guild management is founder-only.
func SetupAuthRoutes(app *fiber.App, registry *services.RegistryService) {
	app.Post("/register", registerHandler(registry))

	guild := app.Group("/guild", middleware.RequireTier(middleware.TierFounder))
	guild.Post("/approve/:player_id", approveHandler(registry))
	guild.Post("/promote/:player_id", changeRankHandler(registry, services.RankPromote))
	guild.Post("/demote/:player_id", changeRankHandler(registry, services.RankDemote))
	guild.Get("/info", guildInfoHandler(registry))
}

func registerHandler(registry *services.RegistryService) fiber.Handler {
	type req struct {
		DisplayName string `json:"display_name"`
		Code        string `json:"code"`
	}
	return func(c *fiber.Ctx) error {
		var body req
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if body.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
		}
		displayName := body.DisplayName
		if displayName == "" {
			displayName = middleware.ExternalID(c)
		}

		player, err := registry.Register(middleware.ExternalID(c), displayName, body.Code)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(player)
	}
}

func approveHandler(registry *services.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		player, err := registry.Approve(c.Params("player_id"))
		if err != nil {
			// A repeat approve of an already-active player is a no-op,
			// not a failure: acknowledgments are idempotent.
			var ise *services.InvalidStateError
			if errors.As(err, &ise) && ise.Mine {
				return c.JSON(fiber.Map{"status": "already_approved"})
			}
			return respondError(c, err)
		}
		return c.JSON(player)
	}
}

func changeRankHandler(registry *services.RegistryService, direction services.RankDirection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := c.Params("player_id")

		// A founder may only be demoted by that same founder.
		if direction == services.RankDemote {
			target, err := registry.GetPlayerByID(playerID)
			if err != nil {
				return respondError(c, err)
			}
			if target.Status == models.StatusFounder && target.ExternalID != middleware.ExternalID(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "founders can only demote themselves",
				})
			}
		}

		player, err := registry.ChangeRank(playerID, direction)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(player)
	}
}

func guildInfoHandler(registry *services.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := registry.GetPlayerByExternalID(middleware.ExternalID(c))
		if err != nil {
			return respondError(c, err)
		}
		summary, err := registry.GetGuildSummary(caller.GuildID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	}
}
