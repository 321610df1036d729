package handlers

import (
	"strconv"

	"guild-review-system/middleware"
	"guild-review-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupStatsRoutes wires the derived views: per-player stats, the alliance
// top list, payroll, and the error-category catalog.
func SetupStatsRoutes(app *fiber.App, stats *services.StatsService) {
	grp := app.Group("/stats", middleware.RequireTier(middleware.TierMember))
	grp.Get("/top", topPlayersHandler(stats))
	grp.Get("/me", playerStatsHandler(stats, true))
	grp.Get("/:external_id", playerStatsHandler(stats, false))

	app.Get("/payroll", middleware.RequireTier(middleware.TierFounder), payrollHandler(stats))
	app.Get("/categories", middleware.RequireTier(middleware.TierMember), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"categories": services.AllCategories()})
	})
}

// periodDays parses the period query: "7d", "30d", or "all" (all-time).
func periodDays(c *fiber.Ctx) int {
	switch c.Query("period", "30d") {
	case "7d":
		return 7
	case "all":
		return 0
	default:
		return 30
	}
}

func playerStatsHandler(stats *services.StatsService, self bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		externalID := middleware.ExternalID(c)
		if !self {
			target := c.Params("external_id")
			// Only mentors and founders may inspect other players.
			if target != externalID && middleware.Tier(c) < middleware.TierMentor {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "only mentors and founders can view other players' statistics",
				})
			}
			externalID = target
		}

		playerID, err := stats.ResolvePlayerID(externalID)
		if err != nil {
			return respondError(c, err)
		}

		playerStats, err := stats.GetPlayerStats(playerID, periodDays(c))
		if err != nil {
			return respondError(c, err)
		}

		rank, err := stats.GetGlobalRank(playerID)
		if err != nil {
			return respondError(c, err)
		}

		body := fiber.Map{"stats": playerStats}
		if rank != nil {
			body["global_rank"] = *rank
		}
		return c.JSON(body)
	}
}

func topPlayersHandler(stats *services.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, _ := strconv.Atoi(c.Query("days", "30"))
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		minSessions, _ := strconv.Atoi(c.Query("min_sessions", "1"))

		top, err := stats.GetTopPlayers(days, limit, minSessions)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(top)
	}
}

func payrollHandler(stats *services.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		amount, err := strconv.ParseInt(c.Query("amount", ""), 10, 64)
		if err != nil || amount < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a positive integer"})
		}
		days, _ := strconv.Atoi(c.Query("days", "14"))

		report, err := stats.GetPayrollShares(days, amount)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	}
}
