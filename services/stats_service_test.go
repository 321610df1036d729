package services

import (
	"fmt"
	"testing"
	"time"

	"guild-review-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedSession writes a closed ticket and its session directly, skipping the
// lifecycle, so aggregation tests can shape history freely.
type seedSession struct {
	player  string
	mentor  string
	role    string
	content string
	score   float64
	tags    []string
	date    time.Time
}

func insertSession(t *testing.T, db *gorm.DB, s seedSession) {
	t.Helper()

	if s.role == "" {
		s.role = "DPS"
	}
	if s.content == "" {
		s.content = "Castles"
	}
	if s.date.IsZero() {
		s.date = time.Now()
	}

	var content models.Content
	require.NoError(t, db.First(&content, "name = ?", s.content).Error)

	ticketID := uuid.NewString()
	closed := s.date
	require.NoError(t, db.Create(&models.Ticket{
		ID:         ticketID,
		ChannelRef: "ticket-seed-" + ticketID[:8],
		PlayerID:   s.player,
		ReplayLink: validReplay,
		Role:       s.role,
		Status:     models.TicketClosed,
		MentorID:   &s.mentor,
		ClosedAt:   &closed,
	}).Error)

	require.NoError(t, db.Create(&models.Session{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		PlayerID:    s.player,
		ContentID:   content.ID,
		Score:       s.score,
		Role:        s.role,
		ErrorTags:   models.JoinErrorCategories(s.tags),
		MentorID:    s.mentor,
		SessionDate: s.date,
	}).Error)
}

func newStatsFixture(t *testing.T) (*gorm.DB, *RegistryService, *StatsService) {
	db := newTestDB(t)
	registry := newTestRegistry(t, db)
	return db, registry, NewStatsService(db)
}

func TestPlayerStatsEmpty(t *testing.T) {
	_, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-empty", "Empty E")

	got, err := stats.GetPlayerStats(player.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SessionCount)
	assert.Zero(t, got.AvgScore)
	assert.Nil(t, got.LastSession)
	assert.Empty(t, got.Trend)
	assert.Empty(t, got.BestRole)
}

func TestPlayerStatsAggregation(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-p", "Player P")
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // a Monday

	// Week 1: two DPS sessions in Castles. Week 2: one Healer session in
	// Crystal League with a better score.
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, role: "DPS", content: "Castles", score: 6, tags: []string{"Positioning", "Rotation"}, date: base})
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, role: "DPS", content: "Castles", score: 8, tags: []string{"Positioning"}, date: base.Add(24 * time.Hour)})
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, role: "Healer", content: "Crystal League", score: 10, date: base.Add(8 * 24 * time.Hour)})

	got, err := stats.GetPlayerStats(player.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, got.SessionCount)
	assert.InDelta(t, 8.0, got.AvgScore, 1e-9)
	require.NotNil(t, got.LastSession)
	assert.Equal(t, "DPS", got.BestRole, "most-played role wins, not best-scoring")
	assert.Equal(t, "Castles", got.TopContent)

	// Two ISO weeks, chronological, and the weekly averages reconstruct
	// the overall one.
	require.Len(t, got.Trend, 2)
	assert.Less(t, got.Trend[0].Week, got.Trend[1].Week)
	assert.Equal(t, 2, got.Trend[0].Sessions)
	assert.InDelta(t, 7.0, got.Trend[0].AvgScore, 1e-9)
	assert.Equal(t, 1, got.Trend[1].Sessions)
	assert.InDelta(t, 10.0, got.Trend[1].AvgScore, 1e-9)
	var weighted float64
	for _, w := range got.Trend {
		weighted += w.AvgScore * float64(w.Sessions)
	}
	assert.InDelta(t, got.AvgScore*float64(got.SessionCount), weighted, 1e-9)

	// Averages descend: Healer 10 ahead of DPS 7, Crystal League ahead of
	// Castles.
	require.Len(t, got.RoleAverages, 2)
	assert.Equal(t, "Healer", got.RoleAverages[0].Name)
	assert.Equal(t, "DPS", got.RoleAverages[1].Name)
	assert.InDelta(t, 7.0, got.RoleAverages[1].AvgScore, 1e-9)
	require.Len(t, got.ContentAverages, 2)
	assert.Equal(t, "Crystal League", got.ContentAverages[0].Name)

	// Positioning was tagged twice, Rotation once.
	require.Len(t, got.TopErrors, 2)
	assert.Equal(t, ErrorFrequency{Category: "Positioning", Count: 2}, got.TopErrors[0])
	assert.Equal(t, ErrorFrequency{Category: "Rotation", Count: 1}, got.TopErrors[1])
}

func TestPlayerStatsBestRoleTie(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-tie", "Tie T")
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	// One session each; the first role seen breaks the tie.
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, role: "Support", score: 5, date: time.Now().Add(-2 * time.Hour)})
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, role: "DPS", score: 9, date: time.Now().Add(-1 * time.Hour)})

	got, err := stats.GetPlayerStats(player.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Support", got.BestRole)
}

func TestPlayerStatsWindow(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-w", "Window W")
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, score: 2, date: time.Now().AddDate(0, 0, -40)})
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, score: 8, date: time.Now().AddDate(0, 0, -3)})

	all, err := stats.GetPlayerStats(player.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, all.SessionCount)
	assert.InDelta(t, 5.0, all.AvgScore, 1e-9)

	recent, err := stats.GetPlayerStats(player.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, recent.SessionCount)
	assert.InDelta(t, 8.0, recent.AvgScore, 1e-9)
}

func TestGlobalRankDense(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	players := make([]*models.Player, 4)
	totals := []float64{20, 15, 15, 10}
	for i, total := range totals {
		players[i] = registerActive(t, registry, fmt.Sprintf("ext-r%d", i), fmt.Sprintf("Ranked %d", i))
		insertSession(t, db, seedSession{player: players[i].ID, mentor: mentor.ID, score: total / 2})
		insertSession(t, db, seedSession{player: players[i].ID, mentor: mentor.ID, score: total / 2})
	}

	expect := []int{1, 2, 2, 3}
	for i, p := range players {
		rank, err := stats.GetGlobalRank(p.ID)
		require.NoError(t, err)
		require.NotNil(t, rank)
		assert.Equal(t, expect[i], *rank, "player with total %v", totals[i])
	}

	unranked := registerActive(t, registry, "ext-none", "No Sessions")
	rank, err := stats.GetGlobalRank(unranked.ID)
	require.NoError(t, err)
	assert.Nil(t, rank, "no sessions means no rank")
}

func TestTopPlayers(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	// grinder: many middling sessions. ace: one great session. Totals
	// decide the order, so volume beats a single high score.
	grinder := registerActive(t, registry, "ext-g", "Grinder G")
	ace := registerActive(t, registry, "ext-a", "Ace A")
	for i := 0; i < 4; i++ {
		insertSession(t, db, seedSession{player: grinder.ID, mentor: mentor.ID, score: 6})
	}
	insertSession(t, db, seedSession{player: ace.ID, mentor: mentor.ID, score: 10})

	top, err := stats.GetTopPlayers(0, 10, 1)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Grinder G", top[0].DisplayName)
	assert.InDelta(t, 24.0, top[0].TotalPoints, 1e-9)
	assert.Equal(t, 4, top[0].SessionCount)
	assert.Equal(t, "Ace A", top[1].DisplayName)

	// The minimum-sessions floor drops the one-off.
	top, err = stats.GetTopPlayers(0, 10, 2)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Grinder G", top[0].DisplayName)
}

func TestPayrollShares(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-p", "Player P")
	alice := registerMentor(t, registry, "ext-alice", "Alice")
	bob := registerMentor(t, registry, "ext-bob", "Bob")

	// Alice: 2 in-window (one inside the last 7 days) plus 1 outside the
	// window. Bob: 1 in-window.
	insertSession(t, db, seedSession{player: player.ID, mentor: alice.ID, score: 7, date: time.Now().AddDate(0, 0, -2)})
	insertSession(t, db, seedSession{player: player.ID, mentor: alice.ID, score: 7, date: time.Now().AddDate(0, 0, -10)})
	insertSession(t, db, seedSession{player: player.ID, mentor: alice.ID, score: 7, date: time.Now().AddDate(0, 0, -30)})
	insertSession(t, db, seedSession{player: player.ID, mentor: bob.ID, score: 7, date: time.Now().AddDate(0, 0, -5)})

	report, err := stats.GetPayrollShares(14, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalSessions)
	require.Len(t, report.Entries, 2)

	// Ordered by in-window sessions.
	first, second := report.Entries[0], report.Entries[1]
	assert.Equal(t, "Alice", first.MentorName)
	assert.Equal(t, 2, first.Sessions)
	assert.Equal(t, 1, first.Sessions7d)
	assert.Equal(t, 3, first.SessionsAllTime)
	assert.InDelta(t, 2.0/3.0, first.Share, 1e-9)
	assert.EqualValues(t, 666, first.Payout, "payouts truncate down")

	assert.Equal(t, "Bob", second.MentorName)
	assert.EqualValues(t, 333, second.Payout)

	var sum int64
	for _, e := range report.Entries {
		sum += e.Payout
	}
	assert.LessOrEqual(t, sum, report.TotalAmount)
}

func TestPayrollSharesEmptyWindow(t *testing.T) {
	db, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-p", "Player P")
	mentor := registerMentor(t, registry, "ext-m", "Mentor M")

	// Activity exists, but none of it inside the window.
	insertSession(t, db, seedSession{player: player.ID, mentor: mentor.ID, score: 7, date: time.Now().AddDate(0, 0, -60)})

	report, err := stats.GetPayrollShares(14, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalSessions)
	assert.Empty(t, report.Entries)

	var ve *ValidationError
	_, err = stats.GetPayrollShares(14, -5)
	assert.ErrorAs(t, err, &ve)
}

func TestResolvePlayerID(t *testing.T) {
	_, registry, stats := newStatsFixture(t)
	player := registerActive(t, registry, "ext-resolve", "Resolve R")

	id, err := stats.ResolvePlayerID("ext-resolve")
	require.NoError(t, err)
	assert.Equal(t, player.ID, id)

	var nfe *NotFoundError
	_, err = stats.ResolvePlayerID("ext-ghost")
	assert.ErrorAs(t, err, &nfe)
}

func TestIsoWeekKey(t *testing.T) {
	// 2026-01-01 falls in ISO week 1 of 2026; 2027-01-01 falls in ISO
	// week 53 of 2026.
	assert.Equal(t, "2026-W01", isoWeekKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W53", isoWeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}
