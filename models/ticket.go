package models

import (
	"time"
)

// Ticket statuses. The only legal path is
// available → in_progress → closed; closed is terminal.
const (
	TicketAvailable  = "available"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

// Ticket is a request for peer review of a recorded play session.
// MentorID is NULL exactly while the ticket is still available.
type Ticket struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ChannelRef     string     `json:"channel_ref" gorm:"uniqueIndex"`
	PlayerID       string     `json:"player_id" gorm:"not null;index"`
	MentorID       *string    `json:"mentor_id,omitempty" gorm:"index"`
	ReplayLink     string     `json:"replay_link" gorm:"not null"`
	Role           string     `json:"role" gorm:"not null"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status" gorm:"not null;default:'available';index;check:status IN ('available','in_progress','closed')"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	ReminderSentAt *time.Time `json:"-"`

	Player Player  `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
	Mentor *Player `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
}
