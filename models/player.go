package models

import (
	"time"
)

// Player statuses. Transitions move one step along
// pending → active → mentor → founder (or one step back on demotion);
// the only skips allowed are pending → mentor/founder at registration
// via the privileged invite codes.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusMentor  = "mentor"
	StatusFounder = "founder"
)

type Player struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ExternalID  string    `json:"external_id" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	GuildID     string    `json:"guild_id" gorm:"not null;index:idx_players_guild_status"`
	Status      string    `json:"status" gorm:"not null;default:'pending';index:idx_players_guild_status;check:status IN ('pending','active','mentor','founder')"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Guild Guild `json:"guild,omitempty" gorm:"foreignKey:GuildID"`
}

// IsMentor reports whether the player may claim and rate tickets.
func (p *Player) IsMentor() bool {
	return p.Status == StatusMentor || p.Status == StatusFounder
}
