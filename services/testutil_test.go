package services

import (
	"fmt"
	"strings"
	"testing"

	"guild-review-system/models"
	"guild-review-system/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema and
// the content catalog seeded. MaxOpenConns(1) serializes writes the way a
// single connection pool slot would, so conditional updates behave like
// they do against the real store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Guild{},
		&models.Player{},
		&models.Content{},
		&models.Ticket{},
		&models.Session{},
	))

	for _, name := range models.ContentTypes {
		require.NoError(t, db.Create(&models.Content{ID: uuid.NewString(), Name: name}).Error)
	}
	return db
}

const (
	testGeneralCode = "join-test-guild"
	testMentorCode  = "test-guild-mentor"
	testFounderCode = "test-guild-founder"
)

// newTestRegistry seeds one guild with known codes and returns the
// registry over it.
func newTestRegistry(t *testing.T, db *gorm.DB) *RegistryService {
	t.Helper()

	registry := NewRegistryService(db, nil)
	require.NoError(t, db.Create(&models.Guild{
		ID:              uuid.NewString(),
		Name:            "Test Guild",
		CodeHash:        utils.HashInviteCode(testGeneralCode),
		FounderCodeHash: utils.HashInviteCode(testFounderCode),
		MentorCodeHash:  utils.HashInviteCode(testMentorCode),
	}).Error)
	return registry
}

// registerActive registers a player with the general code and approves them.
func registerActive(t *testing.T, registry *RegistryService, externalID, name string) *models.Player {
	t.Helper()

	player, err := registry.Register(externalID, name, testGeneralCode)
	require.NoError(t, err)
	player, err = registry.Approve(player.ID)
	require.NoError(t, err)
	return player
}

// registerMentor registers a player straight in with the mentor code.
func registerMentor(t *testing.T, registry *RegistryService, externalID, name string) *models.Player {
	t.Helper()

	player, err := registry.Register(externalID, name, testMentorCode)
	require.NoError(t, err)
	return player
}
