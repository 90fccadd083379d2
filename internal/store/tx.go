package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pavilion-live/pavilion/pkg/models"
)

func updateOver(ctx context.Context, ex execer, o *models.Over) error {
	query := `
		UPDATE overs SET bowler = $2, delivery_ids = $3, legal_count = $4
		WHERE id = $1
	`
	_, err := ex.ExecContext(ctx, query, o.ID, o.Bowler, pq.Array(o.DeliveryIDs), o.LegalCount)
	if err != nil {
		return fmt.Errorf("update over: %w", err)
	}
	return nil
}

func updateMatchState(ctx context.Context, ex execer, m *models.Match) error {
	query := `
		UPDATE matches SET
			status = $2, current_innings = $3, target = $4,
			score_runs = $5, score_wickets = $6, score_overs = $7,
			winner_team = NULLIF($8, ''), status_reason = NULLIF($9, ''),
			updated_at = $10
		WHERE id = $1
	`
	_, err := ex.ExecContext(ctx, query,
		m.ID, string(m.Status), m.CurrentInnings, m.Target,
		m.CurrentScore.Runs, m.CurrentScore.Wickets, m.CurrentScore.Overs,
		m.WinnerTeam, m.StatusReason, time.Now())
	if err != nil {
		return fmt.Errorf("update match state: %w", err)
	}
	return nil
}

// ApplyOutcome persists one processed delivery atomically: the new
// delivery row, its commentary line, the updated over, the next over
// when one was opened, the innings snapshot, and the match mirror.
// Either everything lands or nothing does.
func (c *Client) ApplyOutcome(ctx context.Context, d *models.Delivery, over, nextOver *models.Over,
	in *models.Innings, m *models.Match, cm *models.Commentary) error {

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertDelivery(ctx, tx, d); err != nil {
		return err
	}
	if cm != nil {
		if err := insertCommentary(ctx, tx, cm); err != nil {
			return err
		}
	}
	if err := updateOver(ctx, tx, over); err != nil {
		return err
	}
	if nextOver != nil {
		if err := createOver(ctx, tx, nextOver); err != nil {
			return err
		}
	}
	if err := updateInnings(ctx, tx, in); err != nil {
		return err
	}
	if err := updateMatchState(ctx, tx, m); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcome: %w", err)
	}
	return nil
}

// ApplyReversal persists an undo atomically: it deletes the reversed
// delivery and its commentary, drops the orphaned auto-created over
// when the undo crossed an over boundary, and writes back the restored
// over, innings, and match.
func (c *Client) ApplyReversal(ctx context.Context, removedDeliveryID string, over *models.Over,
	orphanOverID string, in *models.Innings, m *models.Match) error {

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM commentary WHERE ball_id = $1`, removedDeliveryID); err != nil {
		return fmt.Errorf("delete commentary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM deliveries WHERE id = $1`, removedDeliveryID); err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if orphanOverID != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM overs WHERE id = $1`, orphanOverID); err != nil {
			return fmt.Errorf("delete orphan over: %w", err)
		}
	}
	if err := updateOver(ctx, tx, over); err != nil {
		return err
	}
	if err := updateInnings(ctx, tx, in); err != nil {
		return err
	}
	if err := updateMatchState(ctx, tx, m); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reversal: %w", err)
	}
	return nil
}
