package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavilion-live/pavilion/pkg/models"
)

const deliveryColumns = `
	id, match_id, innings_id, over_id, ball_number,
	striker, non_striker, bowler, runs_off_bat, extra_type,
	is_legal, is_wicket, wicket_kind, dismissed_batter, fielder,
	commentary, created_at
`

func scanDelivery(row interface{ Scan(...interface{}) error }) (*models.Delivery, error) {
	var d models.Delivery
	var extra, wicketKind, dismissed, fielder, commentary sql.NullString
	err := row.Scan(
		&d.ID, &d.MatchID, &d.InningsID, &d.OverID, &d.BallNumber,
		&d.Striker, &d.NonStriker, &d.Bowler, &d.RunsOffBat, &extra,
		&d.IsLegal, &d.IsWicket, &wicketKind, &dismissed, &fielder,
		&commentary, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Extra = models.ExtraType(extra.String)
	if d.Extra == "" {
		d.Extra = models.ExtraNone
	}
	d.WicketKind = models.WicketKind(wicketKind.String)
	d.DismissedBatter = dismissed.String
	d.Fielder = fielder.String
	d.Commentary = commentary.String
	return &d, nil
}

func insertDelivery(ctx context.Context, ex execer, d *models.Delivery) error {
	query := `
		INSERT INTO deliveries (
			id, match_id, innings_id, over_id, ball_number,
			striker, non_striker, bowler, runs_off_bat, extra_type,
			is_legal, is_wicket, wicket_kind, dismissed_batter, fielder,
			commentary, created_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,'none'),
			$11,$12,NULLIF(NULLIF($13,''),'none'),NULLIF($14,''),NULLIF($15,''),
			NULLIF($16,''),$17
		)
	`
	_, err := ex.ExecContext(ctx, query,
		d.ID, d.MatchID, d.InningsID, d.OverID, d.BallNumber,
		d.Striker, d.NonStriker, d.Bowler, d.RunsOffBat, string(d.Extra),
		d.IsLegal, d.IsWicket, string(d.WicketKind), d.DismissedBatter,
		d.Fielder, d.Commentary, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// GetDelivery retrieves a delivery by ID, nil when not found
func (c *Client) GetDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	d, err := scanDelivery(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query delivery: %w", err)
	}
	return d, nil
}

// GetDeliveriesByInnings retrieves all deliveries of an innings in
// chronological order. Feeds stat recomputation on undo.
func (c *Client) GetDeliveriesByInnings(ctx context.Context, inningsID string) ([]models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE innings_id = $1 ORDER BY created_at, id`
	return c.queryDeliveries(ctx, query, inningsID)
}

// GetDeliveriesByOver retrieves all deliveries of an over in order
func (c *Client) GetDeliveriesByOver(ctx context.Context, overID string) ([]models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE over_id = $1 ORDER BY created_at, id`
	return c.queryDeliveries(ctx, query, overID)
}

// LatestDelivery retrieves the chronologically last delivery of an
// innings, nil when the innings has none
func (c *Client) LatestDelivery(ctx context.Context, inningsID string) (*models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE innings_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	d, err := scanDelivery(c.db.QueryRowContext(ctx, query, inningsID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest delivery: %w", err)
	}
	return d, nil
}

func (c *Client) queryDeliveries(ctx context.Context, query string, args ...interface{}) ([]models.Delivery, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var list []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

func insertCommentary(ctx context.Context, ex execer, cm *models.Commentary) error {
	query := `
		INSERT INTO commentary (id, match_id, innings_id, over_id, ball_id, text, type, created_at)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),$6,$7,$8)
	`
	_, err := ex.ExecContext(ctx, query,
		cm.ID, cm.MatchID, cm.InningsID, cm.OverID, cm.BallID,
		cm.Text, string(cm.Type), cm.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert commentary: %w", err)
	}
	return nil
}

// CreateCommentary inserts a standalone commentary line (scorer notes,
// session breaks). Ball commentary is written inside ApplyOutcome.
func (c *Client) CreateCommentary(ctx context.Context, cm *models.Commentary) error {
	return insertCommentary(ctx, c.db, cm)
}

// GetCommentary retrieves a match's commentary feed, newest first
func (c *Client) GetCommentary(ctx context.Context, matchID string, limit int) ([]models.Commentary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, match_id, innings_id, over_id, ball_id, text, type, created_at
		FROM commentary WHERE match_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, query, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("query commentary: %w", err)
	}
	defer rows.Close()

	var list []models.Commentary
	for rows.Next() {
		var cm models.Commentary
		var inningsID, overID, ballID sql.NullString
		if err := rows.Scan(&cm.ID, &cm.MatchID, &inningsID, &overID,
			&ballID, &cm.Text, &cm.Type, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commentary: %w", err)
		}
		cm.InningsID = inningsID.String
		cm.OverID = overID.String
		cm.BallID = ballID.String
		list = append(list, cm)
	}
	return list, rows.Err()
}
