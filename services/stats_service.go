package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"guild-review-system/models"

	"gorm.io/gorm"
)

// StatsService computes derived views over recorded sessions. It holds no
// state of its own: every answer is a pure function of the session table.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// WeekPoint is one bucket of the weekly trend. Week keys are ISO
// year-week ("2026-W35"), which sort correctly as strings.
type WeekPoint struct {
	Week     string  `json:"week"`
	AvgScore float64 `json:"avg_score"`
	Sessions int     `json:"sessions"`
}

type NamedAverage struct {
	Name     string  `json:"name"`
	AvgScore float64 `json:"avg_score"`
}

type ErrorFrequency struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PlayerStats is the per-player rolling-window snapshot.
type PlayerStats struct {
	AvgScore        float64          `json:"avg_score"`
	SessionCount    int              `json:"session_count"`
	LastSession     *time.Time       `json:"last_session,omitempty"`
	BestRole        string           `json:"best_role,omitempty"`
	TopContent      string           `json:"top_content,omitempty"`
	Trend           []WeekPoint      `json:"trend"`
	RoleAverages    []NamedAverage   `json:"role_averages"`
	ContentAverages []NamedAverage   `json:"content_averages"`
	TopErrors       []ErrorFrequency `json:"top_errors"`
}

// isoWeekKey buckets a timestamp by ISO 8601 week (Monday start). The
// original grouped by a locale %Y-%W key; ISO week is the documented
// policy here so year-boundary weeks land in exactly one bucket.
func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// counter tracks occurrence counts together with first-seen order so
// ties break by scan order, matching insertion-ordered aggregation.
type counter struct {
	counts map[string]int
	sums   map[string]float64
	first  map[string]int
	next   int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, sums: map[string]float64{}, first: map[string]int{}}
}

func (c *counter) add(key string, score float64) {
	if _, seen := c.first[key]; !seen {
		c.first[key] = c.next
		c.next++
	}
	c.counts[key]++
	c.sums[key] += score
}

// mode returns the most frequent key, ties broken by first-encountered
// in descending-count order.
func (c *counter) mode() string {
	best, bestCount, bestFirst := "", -1, 0
	for key, n := range c.counts {
		if n > bestCount || (n == bestCount && c.first[key] < bestFirst) {
			best, bestCount, bestFirst = key, n, c.first[key]
		}
	}
	return best
}

// averagesDesc returns per-key average scores sorted descending.
func (c *counter) averagesDesc() []NamedAverage {
	out := make([]NamedAverage, 0, len(c.counts))
	for key, n := range c.counts {
		out = append(out, NamedAverage{Name: key, AvgScore: c.sums[key] / float64(n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return c.first[out[i].Name] < c.first[out[j].Name]
	})
	return out
}

// topCounts returns the most frequent keys, count descending with scan
// order as tiebreak, at most limit entries.
func (c *counter) topCounts(limit int) []ErrorFrequency {
	out := make([]ErrorFrequency, 0, len(c.counts))
	for key, n := range c.counts {
		out = append(out, ErrorFrequency{Category: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return c.first[out[i].Category] < c.first[out[j].Category]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetPlayerStats aggregates a player's sessions in one pass. windowDays 0
// means all-time. A player with no sessions gets a zero snapshot, not an
// error.
func (s *StatsService) GetPlayerStats(playerID string, windowDays int) (*PlayerStats, error) {
	q := s.DB.Preload("Content").Where("player_id = ?", playerID)
	if windowDays > 0 {
		q = q.Where("session_date >= ?", time.Now().AddDate(0, 0, -windowDays))
	}
	var sessions []models.Session
	if err := q.Order("session_date ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	stats := &PlayerStats{
		Trend:           []WeekPoint{},
		RoleAverages:    []NamedAverage{},
		ContentAverages: []NamedAverage{},
		TopErrors:       []ErrorFrequency{},
	}
	if len(sessions) == 0 {
		return stats, nil
	}

	roles := newCounter()
	contents := newCounter()
	errorTags := newCounter()
	weeks := newCounter()

	var total float64
	for _, sess := range sessions {
		total += sess.Score
		roles.add(sess.Role, sess.Score)
		contents.add(sess.Content.Name, sess.Score)
		weeks.add(isoWeekKey(sess.SessionDate), sess.Score)
		for _, cat := range sess.ErrorCategories() {
			errorTags.add(cat, 0)
		}
		last := sess.SessionDate
		if stats.LastSession == nil || last.After(*stats.LastSession) {
			stats.LastSession = &last
		}
	}

	stats.SessionCount = len(sessions)
	stats.AvgScore = total / float64(len(sessions))
	stats.BestRole = roles.mode()
	stats.TopContent = contents.mode()
	stats.RoleAverages = roles.averagesDesc()
	stats.ContentAverages = contents.averagesDesc()
	stats.TopErrors = errorTags.topCounts(5)

	for key, n := range weeks.counts {
		stats.Trend = append(stats.Trend, WeekPoint{
			Week:     key,
			AvgScore: weeks.sums[key] / float64(n),
			Sessions: n,
		})
	}
	sort.Slice(stats.Trend, func(i, j int) bool { return stats.Trend[i].Week < stats.Trend[j].Week })

	return stats, nil
}

// GetGlobalRank ranks a player by summed score among every player with at
// least one session, dense ranking (equal totals share a rank and the next
// distinct total is one rank below). Returns nil for a player with no
// sessions.
func (s *StatsService) GetGlobalRank(playerID string) (*int, error) {
	type totalRow struct {
		PlayerID string
		Total    float64
	}
	var rows []totalRow
	err := s.DB.Model(&models.Session{}).
		Select("player_id, SUM(score) as total").
		Group("player_id").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	rank := 0
	prev := math.Inf(1)
	for _, row := range rows {
		if row.Total < prev {
			rank++
			prev = row.Total
		}
		if row.PlayerID == playerID {
			r := rank
			return &r, nil
		}
	}
	return nil, nil
}

// TopPlayer is one row of the alliance ranking.
type TopPlayer struct {
	PlayerID     string  `json:"player_id"`
	ExternalID   string  `json:"external_id"`
	DisplayName  string  `json:"display_name"`
	AvgScore     float64 `json:"avg_score"`
	SessionCount int     `json:"session_count"`
	TotalPoints  float64 `json:"total_points"`
}

// GetTopPlayers ranks players by total point sum (volume plus quality, not
// bare average) within the window, keeping only those with at least
// minSessions sessions.
func (s *StatsService) GetTopPlayers(windowDays, limit, minSessions int) ([]TopPlayer, error) {
	if limit <= 0 {
		limit = 10
	}
	if minSessions <= 0 {
		minSessions = 1
	}

	q := s.DB.Model(&models.Session{}).
		Select("sessions.player_id, players.external_id, players.display_name, AVG(sessions.score) as avg_score, COUNT(*) as session_count, SUM(sessions.score) as total_points").
		Joins("JOIN players ON players.id = sessions.player_id")
	if windowDays > 0 {
		q = q.Where("sessions.session_date >= ?", time.Now().AddDate(0, 0, -windowDays))
	}

	var rows []TopPlayer
	err := q.Group("sessions.player_id, players.external_id, players.display_name").
		Having("COUNT(*) >= ?", minSessions).
		Order("total_points DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PayrollEntry is one mentor's slice of the payroll window.
type PayrollEntry struct {
	MentorID        string  `json:"mentor_id"`
	MentorName      string  `json:"mentor_name"`
	Sessions        int     `json:"sessions"`
	Sessions7d      int     `json:"sessions_7d"`
	SessionsAllTime int     `json:"sessions_all_time"`
	Share           float64 `json:"share"`
	Payout          int64   `json:"payout"`
}

// PayrollReport is the per-mentor breakdown of a budget over a window.
type PayrollReport struct {
	WindowDays    int            `json:"window_days"`
	TotalAmount   int64          `json:"total_amount"`
	TotalSessions int            `json:"total_sessions"`
	Entries       []PayrollEntry `json:"entries"`
}

// GetPayrollShares splits totalAmount between mentors proportionally to
// the sessions each conducted inside the window. Payouts floor-truncate,
// so the sum never exceeds the budget; a window with zero sessions yields
// an empty report rather than a division by zero.
func (s *StatsService) GetPayrollShares(windowDays int, totalAmount int64) (*PayrollReport, error) {
	if windowDays <= 0 {
		windowDays = 14
	}
	if totalAmount < 0 {
		return nil, &ValidationError{Field: "total_amount", Reason: "amount must not be negative"}
	}

	now := time.Now()
	windowStart := now.AddDate(0, 0, -windowDays)
	last7 := now.AddDate(0, 0, -7)

	type mentorRow struct {
		MentorID    string
		DisplayName string
		AllTime     int
		InWindow    int
		Last7       int
	}
	var rows []mentorRow
	err := s.DB.Model(&models.Session{}).
		Select("sessions.mentor_id, players.display_name, COUNT(*) as all_time, "+
			"COUNT(CASE WHEN sessions.session_date >= ? THEN 1 END) as in_window, "+
			"COUNT(CASE WHEN sessions.session_date >= ? THEN 1 END) as last7",
			windowStart, last7).
		Joins("JOIN players ON players.id = sessions.mentor_id").
		Group("sessions.mentor_id, players.display_name").
		Order("in_window DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &PayrollReport{WindowDays: windowDays, TotalAmount: totalAmount, Entries: []PayrollEntry{}}
	for _, row := range rows {
		report.TotalSessions += row.InWindow
	}
	if report.TotalSessions == 0 {
		return report, nil
	}

	for _, row := range rows {
		share := float64(row.InWindow) / float64(report.TotalSessions)
		report.Entries = append(report.Entries, PayrollEntry{
			MentorID:        row.MentorID,
			MentorName:      row.DisplayName,
			Sessions:        row.InWindow,
			Sessions7d:      row.Last7,
			SessionsAllTime: row.AllTime,
			Share:           share,
			Payout:          int64(math.Floor(float64(totalAmount) * share)),
		})
	}
	return report, nil
}

// ResolvePlayerID maps an external identity to the internal player ID,
// for stat lookups keyed by the chat platform's user ID.
func (s *StatsService) ResolvePlayerID(externalID string) (string, error) {
	var player models.Player
	err := s.DB.Select("id").Where("external_id = ?", externalID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &NotFoundError{Entity: "player", ID: externalID}
	}
	if err != nil {
		return "", err
	}
	return player.ID, nil
}
