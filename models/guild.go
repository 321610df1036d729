package models

import (
	"time"
)

// Guild is seeded from config at startup. Invite codes are never stored in
// plaintext, only their SHA-256 digests, each unique across all guilds.
// ExternalID stays empty until the chat platform's guild is first observed.
type Guild struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ExternalID      string    `json:"external_id" gorm:"index"`
	Name            string    `json:"name" gorm:"not null"`
	CodeHash        string    `json:"-" gorm:"not null;uniqueIndex"`
	FounderCodeHash string    `json:"-" gorm:"not null;uniqueIndex"`
	MentorCodeHash  string    `json:"-" gorm:"not null;uniqueIndex"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`

	Players []Player `json:"players,omitempty" gorm:"foreignKey:GuildID"`
}

// CodeKind says which of a guild's three invite codes a raw code matched.
type CodeKind string

const (
	CodeKindGeneral CodeKind = "general"
	CodeKindMentor  CodeKind = "mentor"
	CodeKindFounder CodeKind = "founder"
)
