package services

import (
	"log"

	"guild-review-system/models"
)

// Notifier delivers state-change events to players and mentors. The core
// never depends on delivery succeeding: implementations must swallow
// transport failures.
type Notifier interface {
	SessionEvaluated(player *models.Player, session *models.Session)
	RegistrationPending(player *models.Player, guild *models.Guild)
	TicketStale(ticket *models.Ticket)
}

// LogNotifier is the default Notifier: it just logs. The chat-platform
// adapter replaces it in production wiring.
type LogNotifier struct{}

func (LogNotifier) SessionEvaluated(player *models.Player, session *models.Session) {
	log.Printf("📨 Session evaluated for %s: score %.1f (%s)", player.DisplayName, session.Score, session.Role)
}

func (LogNotifier) RegistrationPending(player *models.Player, guild *models.Guild) {
	log.Printf("🆕 Registration pending approval: %s in guild %s", player.DisplayName, guild.Name)
}

func (LogNotifier) TicketStale(ticket *models.Ticket) {
	log.Printf("⏰ Ticket %s still unclaimed since %s", ticket.ID, ticket.CreatedAt.Format("2006-01-02 15:04"))
}
