package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GuildSeed is one guild definition from the seed file. The three codes
// are plaintext here and hashed before they ever reach the database.
type GuildSeed struct {
	Name        string `yaml:"name"`
	Code        string `yaml:"code"`
	FounderCode string `yaml:"founder_code"`
	MentorCode  string `yaml:"mentor_code"`
}

// RoleMap maps the chat platform's role IDs onto permission tiers.
type RoleMap struct {
	MemberID  string `yaml:"member_id"`
	MentorID  string `yaml:"mentor_id"`
	FounderID string `yaml:"founder_id"`
}

type TicketSettings struct {
	ReminderAfterHours int `yaml:"reminder_after_hours"`
}

// Config is the seed configuration, read once at startup.
type Config struct {
	Guilds  []GuildSeed    `yaml:"guilds"`
	Roles   RoleMap        `yaml:"roles"`
	Tickets TicketSettings `yaml:"tickets"`
}

// LoadConfig reads and parses the YAML seed file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Tickets.ReminderAfterHours <= 0 {
		cfg.Tickets.ReminderAfterHours = 12
	}
	return &cfg, nil
}
