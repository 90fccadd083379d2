package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pavilion-live/pavilion/pkg/models"
)

const matchColumns = `
	id, match_number, name, match_type, team_a, team_b, toss_winner,
	elected_to, overs, status, scheduled_at, venue, current_innings,
	score_runs, score_wickets, score_overs, target, winner_team,
	status_reason, created_at, updated_at
`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var tossWinner, electedTo, venue, winner, reason sql.NullString
	err := row.Scan(
		&m.ID, &m.MatchNumber, &m.Name, &m.Type, &m.TeamA, &m.TeamB,
		&tossWinner, &electedTo, &m.TotalOvers, &m.Status, &m.ScheduledAt,
		&venue, &m.CurrentInnings, &m.CurrentScore.Runs,
		&m.CurrentScore.Wickets, &m.CurrentScore.Overs, &m.Target,
		&winner, &reason, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.TossWinner = tossWinner.String
	m.ElectedTo = electedTo.String
	m.Venue = venue.String
	m.WinnerTeam = winner.String
	m.StatusReason = reason.String
	return &m, nil
}

// CreateMatch inserts a new match
func (c *Client) CreateMatch(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (
			id, match_number, name, match_type, team_a, team_b, overs,
			status, scheduled_at, venue, current_innings,
			score_runs, score_wickets, score_overs, target,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`
	_, err := c.db.ExecContext(ctx, query,
		m.ID, m.MatchNumber, m.Name, m.Type, m.TeamA, m.TeamB, m.TotalOvers,
		m.Status, m.ScheduledAt, m.Venue, m.CurrentInnings,
		m.CurrentScore.Runs, m.CurrentScore.Wickets, m.CurrentScore.Overs,
		m.Target, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// GetMatch retrieves a match by ID, nil when not found
func (c *Client) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query match: %w", err)
	}
	return m, nil
}

// ListMatches retrieves matches with optional filtering
func (c *Client) ListMatches(ctx context.Context, filters MatchFilters) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.TeamID != "" {
		query += fmt.Sprintf(" AND (team_a = $%d OR team_b = $%d)", argIdx, argIdx)
		args = append(args, filters.TeamID)
		argIdx++
	}

	query += " ORDER BY scheduled_at ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// ListMatchesOn retrieves matches scheduled on the given UTC date
func (c *Client) ListMatchesOn(ctx context.Context, date time.Time) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at ASC`
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := c.db.QueryContext(ctx, query, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("query matches by date: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// UpdateMatch persists mutable match fields
func (c *Client) UpdateMatch(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			toss_winner = NULLIF($2, ''), elected_to = NULLIF($3, ''),
			status = $4, current_innings = $5,
			score_runs = $6, score_wickets = $7, score_overs = $8,
			target = $9, winner_team = NULLIF($10, ''),
			status_reason = NULLIF($11, ''), overs = $12, updated_at = $13
		WHERE id = $1
	`
	_, err := c.db.ExecContext(ctx, query,
		m.ID, m.TossWinner, m.ElectedTo, m.Status, m.CurrentInnings,
		m.CurrentScore.Runs, m.CurrentScore.Wickets, m.CurrentScore.Overs,
		m.Target, m.WinnerTeam, m.StatusReason, m.TotalOvers, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return nil
}
