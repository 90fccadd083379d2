package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/pavilion-live/pavilion/pkg/models"
)

const inningsColumns = `
	id, match_id, batting_team, bowling_team, innings_number,
	total_runs, total_wickets, total_overs, striker, non_striker,
	current_bowler, current_over_id, previous_over_bowler, next_bowler,
	batter_stats, bowler_stats, fall_of_wickets,
	completed, end_reason, created_at, updated_at
`

func scanInnings(row interface{ Scan(...interface{}) error }) (*models.Innings, error) {
	var in models.Innings
	var bowler, overID, prevBowler, nextBowler, endReason sql.NullString
	var batters, bowlers, fow []byte
	err := row.Scan(
		&in.ID, &in.MatchID, &in.BattingTeam, &in.BowlingTeam,
		&in.InningsNumber, &in.TotalRuns, &in.TotalWickets, &in.TotalOvers,
		&in.Striker, &in.NonStriker, &bowler, &overID, &prevBowler,
		&nextBowler, &batters, &bowlers, &fow,
		&in.Completed, &endReason, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	in.CurrentBowler = bowler.String
	in.CurrentOverID = overID.String
	in.PreviousOverBowler = prevBowler.String
	in.NextBowler = nextBowler.String
	in.EndReason = models.InningsEndReason(endReason.String)

	if len(batters) > 0 {
		if err := json.Unmarshal(batters, &in.BatterStats); err != nil {
			return nil, fmt.Errorf("unmarshal batter stats: %w", err)
		}
	}
	if len(bowlers) > 0 {
		if err := json.Unmarshal(bowlers, &in.BowlerStats); err != nil {
			return nil, fmt.Errorf("unmarshal bowler stats: %w", err)
		}
	}
	if len(fow) > 0 {
		if err := json.Unmarshal(fow, &in.FallOfWickets); err != nil {
			return nil, fmt.Errorf("unmarshal fall of wickets: %w", err)
		}
	}
	return &in, nil
}

func inningsJSON(in *models.Innings) (batters, bowlers, fow []byte, err error) {
	if batters, err = json.Marshal(in.BatterStats); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal batter stats: %w", err)
	}
	if bowlers, err = json.Marshal(in.BowlerStats); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal bowler stats: %w", err)
	}
	if fow, err = json.Marshal(in.FallOfWickets); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal fall of wickets: %w", err)
	}
	return batters, bowlers, fow, nil
}

// CreateInnings inserts a new innings
func (c *Client) CreateInnings(ctx context.Context, in *models.Innings) error {
	batters, bowlers, fow, err := inningsJSON(in)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO innings (
			id, match_id, batting_team, bowling_team, innings_number,
			total_runs, total_wickets, total_overs, striker, non_striker,
			current_bowler, current_over_id, previous_over_bowler,
			next_bowler, batter_stats, bowler_stats, fall_of_wickets,
			completed, end_reason, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			NULLIF($11,''),NULLIF($12,''),NULLIF($13,''),NULLIF($14,''),
			$15,$16,$17,$18,NULLIF($19,''),$20,$21
		)
	`
	_, err = c.db.ExecContext(ctx, query,
		in.ID, in.MatchID, in.BattingTeam, in.BowlingTeam, in.InningsNumber,
		in.TotalRuns, in.TotalWickets, in.TotalOvers, in.Striker, in.NonStriker,
		in.CurrentBowler, in.CurrentOverID, in.PreviousOverBowler,
		in.NextBowler, batters, bowlers, fow,
		in.Completed, string(in.EndReason), in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert innings: %w", err)
	}
	return nil
}

// GetInnings retrieves an innings by ID, nil when not found
func (c *Client) GetInnings(ctx context.Context, id string) (*models.Innings, error) {
	query := `SELECT ` + inningsColumns + ` FROM innings WHERE id = $1`
	in, err := scanInnings(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query innings: %w", err)
	}
	return in, nil
}

// GetInningsByMatch retrieves all innings of a match, ordered by number
func (c *Client) GetInningsByMatch(ctx context.Context, matchID string) ([]models.Innings, error) {
	query := `SELECT ` + inningsColumns + ` FROM innings WHERE match_id = $1 ORDER BY innings_number`
	rows, err := c.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("query innings by match: %w", err)
	}
	defer rows.Close()

	var list []models.Innings
	for rows.Next() {
		in, err := scanInnings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan innings: %w", err)
		}
		list = append(list, *in)
	}
	return list, rows.Err()
}

// CurrentInnings retrieves the open innings of a match, nil when none
func (c *Client) CurrentInnings(ctx context.Context, matchID string) (*models.Innings, error) {
	query := `SELECT ` + inningsColumns + ` FROM innings
		WHERE match_id = $1 AND completed = false
		ORDER BY innings_number DESC LIMIT 1`
	in, err := scanInnings(c.db.QueryRowContext(ctx, query, matchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query current innings: %w", err)
	}
	return in, nil
}

// CreateOver inserts a new over
func (c *Client) CreateOver(ctx context.Context, o *models.Over) error {
	return createOver(ctx, c.db, o)
}

func createOver(ctx context.Context, ex execer, o *models.Over) error {
	query := `
		INSERT INTO overs (id, match_id, innings_id, over_number, bowler,
			delivery_ids, legal_count, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := ex.ExecContext(ctx, query,
		o.ID, o.MatchID, o.InningsID, o.OverNumber, o.Bowler,
		pq.Array(o.DeliveryIDs), o.LegalCount, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert over: %w", err)
	}
	return nil
}

// GetOver retrieves an over by ID, nil when not found
func (c *Client) GetOver(ctx context.Context, id string) (*models.Over, error) {
	query := `
		SELECT id, match_id, innings_id, over_number, bowler,
			delivery_ids, legal_count, created_at
		FROM overs WHERE id = $1
	`
	var o models.Over
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.MatchID, &o.InningsID, &o.OverNumber, &o.Bowler,
		pq.Array(&o.DeliveryIDs), &o.LegalCount, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query over: %w", err)
	}
	return &o, nil
}

// GetOverByNumber retrieves an over by innings and number, nil when not found
func (c *Client) GetOverByNumber(ctx context.Context, inningsID string, number int) (*models.Over, error) {
	query := `
		SELECT id, match_id, innings_id, over_number, bowler,
			delivery_ids, legal_count, created_at
		FROM overs WHERE innings_id = $1 AND over_number = $2
	`
	var o models.Over
	err := c.db.QueryRowContext(ctx, query, inningsID, number).Scan(
		&o.ID, &o.MatchID, &o.InningsID, &o.OverNumber, &o.Bowler,
		pq.Array(&o.DeliveryIDs), &o.LegalCount, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query over by number: %w", err)
	}
	return &o, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updateInnings(ctx context.Context, ex execer, in *models.Innings) error {
	batters, bowlers, fow, err := inningsJSON(in)
	if err != nil {
		return err
	}
	query := `
		UPDATE innings SET
			total_runs = $2, total_wickets = $3, total_overs = $4,
			striker = $5, non_striker = $6,
			current_bowler = NULLIF($7, ''), current_over_id = NULLIF($8, ''),
			previous_over_bowler = NULLIF($9, ''), next_bowler = NULLIF($10, ''),
			batter_stats = $11, bowler_stats = $12, fall_of_wickets = $13,
			completed = $14, end_reason = NULLIF($15, ''), updated_at = $16
		WHERE id = $1
	`
	_, err = ex.ExecContext(ctx, query,
		in.ID, in.TotalRuns, in.TotalWickets, in.TotalOvers,
		in.Striker, in.NonStriker, in.CurrentBowler, in.CurrentOverID,
		in.PreviousOverBowler, in.NextBowler, batters, bowlers, fow,
		in.Completed, string(in.EndReason), in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update innings: %w", err)
	}
	return nil
}

// UpdateInnings persists mutable innings fields
func (c *Client) UpdateInnings(ctx context.Context, in *models.Innings) error {
	return updateInnings(ctx, c.db, in)
}
