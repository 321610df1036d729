package services

import (
	"errors"
	"log"
	"time"

	"guild-review-system/models"
	"guild-review-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistryService owns guilds and players: invite resolution, registration,
// approval, and rank changes.
type RegistryService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewRegistryService(db *gorm.DB, notifier Notifier) *RegistryService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &RegistryService{DB: db, Notifier: notifier}
}

// SeedGuilds inserts the configured guilds and the content catalog on first
// startup. Idempotent: a non-empty guilds table means seeding already ran.
func (s *RegistryService) SeedGuilds(cfg *utils.Config) error {
	var count int64
	if err := s.DB.Model(&models.Guild{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, seed := range cfg.Guilds {
			guild := models.Guild{
				ID:              uuid.NewString(),
				Name:            seed.Name,
				CodeHash:        utils.HashInviteCode(seed.Code),
				FounderCodeHash: utils.HashInviteCode(seed.FounderCode),
				MentorCodeHash:  utils.HashInviteCode(seed.MentorCode),
			}
			if err := tx.Create(&guild).Error; err != nil {
				return err
			}
			log.Printf("✅ Seeded guild %s", guild.Name)
		}
		for _, name := range models.ContentTypes {
			content := models.Content{ID: uuid.NewString(), Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&content).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BackfillGuildExternalID records the chat platform's guild ID once the
// platform guild is first observed. Only fills an empty external_id.
func (s *RegistryService) BackfillGuildExternalID(guildName, externalID string) error {
	return s.DB.Model(&models.Guild{}).
		Where("name = ? AND (external_id = '' OR external_id IS NULL)", guildName).
		Update("external_id", externalID).Error
}

// ResolveInvite hashes the raw code and looks the digest up against every
// guild's three stored hashes. Returns nil when nothing matches.
func (s *RegistryService) ResolveInvite(code string) (*models.Guild, models.CodeKind, error) {
	hash := utils.HashInviteCode(code)

	var guild models.Guild
	err := s.DB.Where("code_hash = ? OR founder_code_hash = ? OR mentor_code_hash = ?", hash, hash, hash).
		First(&guild).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	kind := models.CodeKindGeneral
	switch hash {
	case guild.FounderCodeHash:
		kind = models.CodeKindFounder
	case guild.MentorCodeHash:
		kind = models.CodeKindMentor
	}
	return &guild, kind, nil
}

// Register creates a Player for an external identity using an invite code.
// Founder and mentor codes grant their status immediately; the general code
// leaves the player pending until a founder approves.
func (s *RegistryService) Register(externalID, displayName, code string) (*models.Player, error) {
	guild, kind, err := s.ResolveInvite(code)
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, &ValidationError{Field: "code", Reason: "invalid guild code"}
	}

	var existing models.Player
	err = s.DB.Where("external_id = ?", externalID).First(&existing).Error
	if err == nil {
		return nil, &ConflictError{Entity: "player", Key: externalID, State: existing.Status}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := models.StatusPending
	switch kind {
	case models.CodeKindFounder:
		status = models.StatusFounder
	case models.CodeKindMentor:
		status = models.StatusMentor
	}

	player := models.Player{
		ID:          uuid.NewString(),
		ExternalID:  externalID,
		DisplayName: displayName,
		GuildID:     guild.ID,
		Status:      status,
	}
	// The unique index on external_id is the real guard; a racing duplicate
	// insert fails here and is reported as a conflict.
	if err := s.DB.Create(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Entity: "player", Key: externalID}
		}
		return nil, err
	}

	if status == models.StatusPending {
		s.Notifier.RegistrationPending(&player, guild)
	}
	log.Printf("✅ Registered %s in guild %s as %s", displayName, guild.Name, status)
	return &player, nil
}

// Approve moves a pending player to active. The transition is a conditional
// update so two founders approving at once cannot both "win".
func (s *RegistryService) Approve(playerID string) (*models.Player, error) {
	result := s.DB.Model(&models.Player{}).
		Where("id = ? AND status = ?", playerID, models.StatusPending).
		Update("status", models.StatusActive)
	if result.Error != nil {
		return nil, result.Error
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "player", ID: playerID}
		}
		return nil, err
	}

	if result.RowsAffected == 0 {
		return nil, &InvalidStateError{
			Entity: "player", ID: playerID, State: player.Status, Op: "approve",
			Mine: player.Status == models.StatusActive,
		}
	}
	return &player, nil
}

type RankDirection string

const (
	RankPromote RankDirection = "promote"
	RankDemote  RankDirection = "demote"
)

// rankSteps define the only legal one-step transitions.
var rankSteps = map[RankDirection]map[string]string{
	RankPromote: {
		models.StatusActive: models.StatusMentor,
		models.StatusMentor: models.StatusFounder,
	},
	RankDemote: {
		models.StatusFounder: models.StatusMentor,
		models.StatusMentor:  models.StatusActive,
	},
}

// ChangeRank promotes or demotes a player exactly one level. Pending players
// cannot be promoted (they must be approved first), active players cannot be
// demoted, founders cannot be promoted. Whether the actor may demote a
// founder (self-demotion only) is the caller's check, not this one.
func (s *RegistryService) ChangeRank(playerID string, direction RankDirection) (*models.Player, error) {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "player", ID: playerID}
		}
		return nil, err
	}

	next, ok := rankSteps[direction][player.Status]
	if !ok {
		return nil, &InvalidStateError{Entity: "player", ID: playerID, State: player.Status, Op: string(direction)}
	}

	// Guard on the observed status so racing rank changes cannot skip a level.
	result := s.DB.Model(&models.Player{}).
		Where("id = ? AND status = ?", playerID, player.Status).
		Update("status", next)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &InvalidStateError{Entity: "player", ID: playerID, State: player.Status, Op: string(direction)}
	}

	player.Status = next
	log.Printf("✅ %s player %s -> %s", direction, player.DisplayName, next)
	return &player, nil
}

// GetPlayerByID fetches a player by internal ID.
func (s *RegistryService) GetPlayerByID(playerID string) (*models.Player, error) {
	var player models.Player
	err := s.DB.First(&player, "id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "player", ID: playerID}
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayerByExternalID fetches the player owned by a chat-platform identity.
func (s *RegistryService) GetPlayerByExternalID(externalID string) (*models.Player, error) {
	var player models.Player
	err := s.DB.Where("external_id = ?", externalID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "player", ID: externalID}
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GuildSummary aggregates membership counts and 30-day review activity.
type GuildSummary struct {
	GuildName     string  `json:"guild_name"`
	ActiveMembers int64   `json:"active_members"`
	Mentors       int64   `json:"mentors"`
	Founders      int64   `json:"founders"`
	Sessions30d   int64   `json:"sessions_30d"`
	AvgScore30d   float64 `json:"avg_score_30d"`
}

func (s *RegistryService) GetGuildSummary(guildID string) (*GuildSummary, error) {
	var guild models.Guild
	if err := s.DB.First(&guild, "id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "guild", ID: guildID}
		}
		return nil, err
	}

	summary := GuildSummary{GuildName: guild.Name}
	s.DB.Model(&models.Player{}).Where("guild_id = ? AND status <> ?", guildID, models.StatusPending).Count(&summary.ActiveMembers)
	s.DB.Model(&models.Player{}).Where("guild_id = ? AND status = ?", guildID, models.StatusMentor).Count(&summary.Mentors)
	s.DB.Model(&models.Player{}).Where("guild_id = ? AND status = ?", guildID, models.StatusFounder).Count(&summary.Founders)

	type row struct {
		Count int64
		Avg   float64
	}
	var r row
	since := time.Now().AddDate(0, 0, -30)
	s.DB.Model(&models.Session{}).
		Select("COUNT(*) as count, COALESCE(AVG(score), 0) as avg").
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("players.guild_id = ? AND sessions.session_date >= ?", guildID, since).
		Scan(&r)
	summary.Sessions30d = r.Count
	summary.AvgScore30d = r.Avg
	return &summary, nil
}
