package handlers

import (
	"errors"

	"guild-review-system/middleware"
	"guild-review-system/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var statusTitle = cases.Title(language.English)

// SetupTicketRoutes wires the ticket lifecycle. Creating and listing need
// member tier; claiming, rating, and inspecting need mentor tier.
func SetupTicketRoutes(app *fiber.App, tickets *services.TicketService, registry *services.RegistryService) {
	grp := app.Group("/tickets", middleware.RequireTier(middleware.TierMember))
	grp.Post("/", createTicketHandler(tickets, registry))
	grp.Get("/", listTicketsHandler(tickets, registry))

	mentor := grp.Group("/", middleware.RequireTier(middleware.TierMentor))
	mentor.Get("/:id", ticketInfoHandler(tickets))
	mentor.Post("/:id/claim", claimTicketHandler(tickets, registry))
	mentor.Post("/:id/rate", rateTicketHandler(tickets, registry))
}

func createTicketHandler(tickets *services.TicketService, registry *services.RegistryService) fiber.Handler {
	type req struct {
		ReplayLink  string `json:"replay_link"`
		Role        string `json:"role"`
		Description string `json:"description"`
	}
	return func(c *fiber.Ctx) error {
		var body req
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		player, err := registry.GetPlayerByExternalID(middleware.ExternalID(c))
		if err != nil {
			return respondError(c, err)
		}

		ticket, err := tickets.Create(services.CreateTicketInput{
			PlayerID:    player.ID,
			ReplayLink:  body.ReplayLink,
			Role:        body.Role,
			Description: body.Description,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ticket)
	}
}

func listTicketsHandler(tickets *services.TicketService, registry *services.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		player, err := registry.GetPlayerByExternalID(middleware.ExternalID(c))
		if err != nil {
			return respondError(c, err)
		}

		if middleware.Tier(c) >= middleware.TierMentor {
			list, err := tickets.ListForMentor(player.GuildID, player.ID)
			if err != nil {
				return respondError(c, err)
			}
			return c.JSON(list)
		}

		list, err := tickets.ListForPlayer(player.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

func ticketInfoHandler(tickets *services.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticket, err := tickets.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"ticket":         ticket,
			"status_display": statusTitle.String(ticket.Status),
			"guild":          ticket.Player.Guild.Name,
		})
	}
}

func claimTicketHandler(tickets *services.TicketService, registry *services.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mentor, err := registry.GetPlayerByExternalID(middleware.ExternalID(c))
		if err != nil {
			return respondError(c, err)
		}

		ticket, err := tickets.Claim(c.Params("id"), mentor.ID)
		if err != nil {
			// Re-claiming your own ticket is an idempotent no-op.
			var ise *services.InvalidStateError
			if errors.As(err, &ise) && ise.Mine {
				return c.JSON(fiber.Map{"status": "already_claimed_by_you"})
			}
			return respondError(c, err)
		}
		return c.JSON(ticket)
	}
}

func rateTicketHandler(tickets *services.TicketService, registry *services.RegistryService) fiber.Handler {
	type req struct {
		Content    string   `json:"content"`
		Role       string   `json:"role"`
		Score      float64  `json:"score"`
		ErrorText  string   `json:"error_text"`
		Categories []string `json:"error_categories"`
		WorkOn     string   `json:"work_on"`
		Comments   string   `json:"comments"`
	}
	return func(c *fiber.Ctx) error {
		var body req
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		mentor, err := registry.GetPlayerByExternalID(middleware.ExternalID(c))
		if err != nil {
			return respondError(c, err)
		}

		session, err := tickets.Rate(services.RateInput{
			TicketID:    c.Params("id"),
			MentorID:    mentor.ID,
			ContentName: body.Content,
			Role:        body.Role,
			Score:       body.Score,
			ErrorText:   body.ErrorText,
			Categories:  body.Categories,
			WorkOn:      body.WorkOn,
			Comments:    body.Comments,
		})
		if err != nil {
			var ise *services.InvalidStateError
			if errors.As(err, &ise) && ise.Mine {
				return c.JSON(fiber.Map{"status": "already_rated"})
			}
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	}
}
