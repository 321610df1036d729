package models

import (
	"strings"
	"time"
)

// Session is the persisted outcome of a mentor's evaluation of a ticket,
// 1:1 with the ticket that it closed. Immutable once created; the
// statistics aggregator reads these rows and nothing else.
type Session struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TicketID    string    `json:"ticket_id" gorm:"not null;uniqueIndex"`
	PlayerID    string    `json:"player_id" gorm:"not null;index:idx_sessions_player_date"`
	ContentID   string    `json:"content_id" gorm:"not null"`
	Score       float64   `json:"score" gorm:"not null;check:score >= 0 AND score <= 10"`
	Role        string    `json:"role" gorm:"not null"`
	ErrorTags   string    `json:"error_tags,omitempty"`
	WorkOn      string    `json:"work_on,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	MentorID    string    `json:"mentor_id" gorm:"not null;index"`
	SessionDate time.Time `json:"session_date" gorm:"not null;index:idx_sessions_player_date"`

	Ticket  Ticket  `json:"-" gorm:"foreignKey:TicketID"`
	Player  Player  `json:"-" gorm:"foreignKey:PlayerID"`
	Content Content `json:"content,omitempty" gorm:"foreignKey:ContentID"`
	Mentor  Player  `json:"-" gorm:"foreignKey:MentorID"`
}

// ErrorCategories splits the stored comma-joined tag list.
func (s *Session) ErrorCategories() []string {
	if s.ErrorTags == "" {
		return nil
	}
	parts := strings.Split(s.ErrorTags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinErrorCategories is the inverse of ErrorCategories.
func JoinErrorCategories(categories []string) string {
	return strings.Join(categories, ",")
}
