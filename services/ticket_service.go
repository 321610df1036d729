package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"guild-review-system/models"
	"guild-review-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// TicketService governs the ticket lifecycle:
// available → in_progress → closed, with no back transitions. Every
// mutating transition is a conditional update against the current state,
// so concurrent attempts against the same ticket serialize in the store
// and exactly one wins.
type TicketService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewTicketService(db *gorm.DB, notifier Notifier) *TicketService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &TicketService{DB: db, Notifier: notifier}
}

// CreateTicketInput carries the player's review request.
type CreateTicketInput struct {
	PlayerID    string
	ReplayLink  string
	Role        string
	Description string
}

// Create validates the replay link and role, then inserts an available
// ticket with no mentor. The channel ref mirrors the communication channel
// the surrounding application opens for the ticket.
func (s *TicketService) Create(in CreateTicketInput) (*models.Ticket, error) {
	if reason := utils.ValidateReplayURL(in.ReplayLink); reason != "" {
		return nil, &ValidationError{Field: "replay_link", Reason: reason}
	}

	role := utils.NormalizeRole(in.Role)
	if role == "" {
		return nil, &ValidationError{
			Field:       "role",
			Reason:      fmt.Sprintf("unknown role %q", in.Role),
			Suggestions: utils.RoleSuggestions(in.Role),
		}
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", in.PlayerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "player", ID: in.PlayerID}
		}
		return nil, err
	}

	ticket := models.Ticket{
		ID:          uuid.NewString(),
		ChannelRef:  fmt.Sprintf("ticket-%s-%s", slug.Make(player.DisplayName), uuid.NewString()[:4]),
		PlayerID:    player.ID,
		ReplayLink:  in.ReplayLink,
		Role:        role,
		Description: in.Description,
		Status:      models.TicketAvailable,
	}
	if err := s.DB.Create(&ticket).Error; err != nil {
		return nil, err
	}
	log.Printf("🎫 Ticket %s created by %s (%s)", ticket.ID, player.DisplayName, role)
	return &ticket, nil
}

// Claim assigns a mentor to an available ticket. The transition is a single
// conditional update; zero rows affected means the claim lost the race (or
// the ticket was never available), and the follow-up read tells the caller
// whether they were the earlier winner.
func (s *TicketService) Claim(ticketID, mentorID string) (*models.Ticket, error) {
	result := s.DB.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketAvailable).
		Updates(map[string]interface{}{
			"status":    models.TicketInProgress,
			"mentor_id": mentorID,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	var ticket models.Ticket
	if err := s.DB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "ticket", ID: ticketID}
		}
		return nil, err
	}

	if result.RowsAffected == 0 {
		return nil, &InvalidStateError{
			Entity: "ticket", ID: ticketID, State: ticket.Status, Op: "claim",
			Mine: ticket.MentorID != nil && *ticket.MentorID == mentorID,
		}
	}
	log.Printf("🔍 Ticket %s claimed by mentor %s", ticketID, mentorID)
	return &ticket, nil
}

// RateInput is a mentor's evaluation of a claimed ticket.
type RateInput struct {
	TicketID    string
	MentorID    string
	ContentName string
	Role        string
	Score       float64
	// ErrorText is categorized at write time; Categories may instead carry
	// pre-picked taxonomy names. Both may be set.
	ErrorText  string
	Categories []string
	WorkOn     string
	Comments   string
}

// Rate closes a ticket: it records the Session and flips the ticket to
// closed in one transaction. Only the claiming mentor may rate, and only
// from in_progress. The closing update is conditional on the state it
// read, so the transition cannot be applied twice.
func (s *TicketService) Rate(in RateInput) (*models.Session, error) {
	if in.Score < 0 || in.Score > 10 {
		return nil, &ValidationError{Field: "score", Reason: "score must be between 0 and 10"}
	}

	role := utils.NormalizeRole(in.Role)
	if role == "" {
		return nil, &ValidationError{
			Field:       "role",
			Reason:      fmt.Sprintf("unknown role %q", in.Role),
			Suggestions: utils.RoleSuggestions(in.Role),
		}
	}

	categories := in.Categories
	for _, c := range categories {
		if !IsKnownCategory(c) {
			return nil, &ValidationError{Field: "error_categories", Reason: fmt.Sprintf("unknown category %q", c)}
		}
	}
	if len(categories) == 0 && in.ErrorText != "" {
		categories = Categorize(in.ErrorText)
	}

	var session *models.Session
	var player models.Player

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.First(&ticket, "id = ?", in.TicketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "ticket", ID: in.TicketID}
			}
			return err
		}

		if ticket.Status != models.TicketInProgress {
			return &InvalidStateError{
				Entity: "ticket", ID: ticket.ID, State: ticket.Status, Op: "rate",
				Mine: ticket.Status == models.TicketClosed && ticket.MentorID != nil && *ticket.MentorID == in.MentorID,
			}
		}
		if ticket.MentorID == nil || *ticket.MentorID != in.MentorID {
			return &InvalidStateError{Entity: "ticket", ID: ticket.ID, State: ticket.Status, Op: "rate"}
		}

		var content models.Content
		if err := tx.First(&content, "name = ?", in.ContentName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ValidationError{Field: "content", Reason: fmt.Sprintf("unknown content type %q", in.ContentName)}
			}
			return err
		}

		now := time.Now()
		session = &models.Session{
			ID:          uuid.NewString(),
			TicketID:    ticket.ID,
			PlayerID:    ticket.PlayerID,
			ContentID:   content.ID,
			Score:       in.Score,
			Role:        role,
			ErrorTags:   models.JoinErrorCategories(categories),
			WorkOn:      in.WorkOn,
			Comments:    in.Comments,
			MentorID:    in.MentorID,
			SessionDate: now,
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Ticket{}).
			Where("id = ? AND status = ? AND mentor_id = ?", ticket.ID, models.TicketInProgress, in.MentorID).
			Updates(map[string]interface{}{
				"status":    models.TicketClosed,
				"closed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Someone changed the ticket between our read and this write;
			// rolling back keeps the session from existing without a close.
			return &InvalidStateError{Entity: "ticket", ID: ticket.ID, State: ticket.Status, Op: "rate"}
		}

		if err := tx.First(&player, "id = ?", ticket.PlayerID).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.SessionEvaluated(&player, session)
	log.Printf("⭐ Ticket %s rated %.1f by mentor %s", in.TicketID, in.Score, in.MentorID)
	return session, nil
}

// Get returns a ticket with its player, mentor, and guild context.
func (s *TicketService) Get(ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.DB.Preload("Player").Preload("Player.Guild").Preload("Mentor").
		First(&ticket, "id = ?", ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "ticket", ID: ticketID}
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListForPlayer returns the player's own open tickets, newest first.
func (s *TicketService) ListForPlayer(playerID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.DB.Where("player_id = ? AND status <> ?", playerID, models.TicketClosed).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// ListForMentor returns the mentor's work queue: every available ticket in
// the guild plus the tickets this mentor already has in progress, oldest
// first so the longest-waiting player is reviewed next.
func (s *TicketService) ListForMentor(guildID, mentorID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.DB.Joins("JOIN players ON players.id = tickets.player_id").
		Where("players.guild_id = ?", guildID).
		Where("tickets.status = ? OR (tickets.status = ? AND tickets.mentor_id = ?)",
			models.TicketAvailable, models.TicketInProgress, mentorID).
		Order("tickets.created_at ASC").
		Find(&tickets).Error
	return tickets, err
}

// FindStale returns available tickets older than the threshold that have
// not been reminded about yet.
func (s *TicketService) FindStale(olderThan time.Duration) ([]models.Ticket, error) {
	cutoff := time.Now().Add(-olderThan)
	var tickets []models.Ticket
	err := s.DB.Where("status = ? AND created_at < ? AND reminder_sent_at IS NULL", models.TicketAvailable, cutoff).
		Find(&tickets).Error
	return tickets, err
}

// MarkReminded stamps a stale ticket so it is reminded about once.
// Conditional on the stamp still being empty: concurrent reminder runs
// cannot both notify.
func (s *TicketService) MarkReminded(ticketID string) (bool, error) {
	result := s.DB.Model(&models.Ticket{}).
		Where("id = ? AND reminder_sent_at IS NULL", ticketID).
		Update("reminder_sent_at", time.Now())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
