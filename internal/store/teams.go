package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// CreateTeam inserts a new team
func (c *Client) CreateTeam(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, short_name, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := c.db.ExecContext(ctx, query,
		team.ID, team.Name, team.ShortName, team.Active, team.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

// GetTeam retrieves a team by ID, nil when not found
func (c *Client) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, name, short_name, active, created_at
		FROM teams WHERE id = $1
	`
	var t models.Team
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.ShortName, &t.Active, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query team: %w", err)
	}
	return &t, nil
}

// ListTeams retrieves all active teams
func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, name, short_name, active, created_at
		FROM teams WHERE active = true ORDER BY name
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// CreatePlayer inserts a new player
func (c *Client) CreatePlayer(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, team_id, name, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.ExecContext(ctx, query,
		p.ID, p.TeamID, p.Name, p.Role, p.Active, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by ID, nil when not found
func (c *Client) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	query := `
		SELECT id, team_id, name, role, active, created_at
		FROM players WHERE id = $1
	`
	var p models.Player
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Role, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query player: %w", err)
	}
	return &p, nil
}

// ListPlayers retrieves active players, optionally filtered by team
func (c *Client) ListPlayers(ctx context.Context, teamID string) ([]models.Player, error) {
	query := `
		SELECT id, team_id, name, role, active, created_at
		FROM players WHERE active = true
	`
	args := []interface{}{}
	if teamID != "" {
		query += " AND team_id = $1"
		args = append(args, teamID)
	}
	query += " ORDER BY name"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Role, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
