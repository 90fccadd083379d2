// Package engine is the ball-by-ball score engine: a pure state
// transition over {innings, over, match} for one validated delivery.
// It performs no I/O and no locking; callers must serialize deliveries
// per match before invoking it.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// Signal is a phase-transition marker raised while processing a delivery
type Signal string

const (
	SignalOverComplete      Signal = "overComplete"
	SignalInningsComplete   Signal = "inningsComplete"
	SignalWicketFallen      Signal = "wicketFallen"
	SignalNewBowlerRequired Signal = "newBowlerRequired"
)

// Outcome is the full result of processing one delivery: updated
// snapshots (inputs are never mutated), phase signals, and the ordered
// notification events for real-time distribution.
type Outcome struct {
	Delivery models.Delivery
	Innings  *models.Innings
	Over     *models.Over
	Match    *models.Match

	// NextOver is set when the over completed and a valid pre-nominated
	// bowler allowed the next over to be auto-created.
	NextOver *models.Over

	Signals []Signal
	Events  []models.MatchEvent
}

// HasSignal reports whether the outcome raised the given signal
func (o *Outcome) HasSignal(s Signal) bool {
	for _, sig := range o.Signals {
		if sig == s {
			return true
		}
	}
	return false
}

// ProcessDelivery ingests one delivery and deterministically updates
// innings state: runs, wickets, overs, strike rotation, fall of wickets,
// batting/bowling tables, over and innings completion, and the bowler
// rotation constraints for the following over.
//
// The delivery is assumed validated upstream: referenced entities exist
// and belong to the correct teams. Preconditions re-checked here are the
// ones that guard state integrity: the innings must be open, the over
// must match the delivery and must not already be complete.
func ProcessDelivery(d models.Delivery, innings *models.Innings, over *models.Over, match *models.Match) (*Outcome, error) {
	if innings == nil || over == nil || match == nil {
		return nil, ErrMissingState
	}
	if innings.Completed {
		return nil, ErrInningsCompleted
	}
	if d.OverID != over.ID || d.InningsID != innings.ID || d.Bowler != over.Bowler {
		return nil, ErrOverMismatch
	}
	if over.Complete() {
		return nil, ErrOverComplete
	}
	if !d.Extra.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExtraType, d.Extra)
	}
	if d.IsWicket && d.WicketKind != "" && !d.WicketKind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWicketKind, d.WicketKind)
	}

	in := innings.Clone()
	ov := models.CloneOver(over)
	m := *match

	// 1. classify
	c := Classify(d.Extra, d.RunsOffBat)
	d.IsLegal = c.Legal

	// 2. run accounting
	in.TotalRuns += d.RunsOffBat + c.ExtraRuns

	var out Outcome

	// 3. wicket accounting, fall-of-wickets entry uses the post-increment total
	if d.IsWicket {
		in.TotalWickets++
		dismissed := d.DismissedBatter
		if dismissed == "" {
			dismissed = d.Striker
			d.DismissedBatter = dismissed
		}
		out.Signals = append(out.Signals, SignalWicketFallen)
	}

	// 4. append to over; illegal deliveries repeat the legal-ball count
	if c.Legal {
		d.BallNumber = ov.LegalCount + 1
		ov.LegalCount++
	} else {
		d.BallNumber = ov.LegalCount
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	ov.DeliveryIDs = append(ov.DeliveryIDs, d.ID)

	// 5. ball counter, over-completion edge
	completedOvers, ballsInOver := ParseOvers(in.TotalOvers)
	overCompleted := false
	if c.Legal {
		ballsInOver++
		if ballsInOver == 6 {
			completedOvers++
			ballsInOver = 0
			overCompleted = true
		}
	}
	in.TotalOvers = formatOvers(completedOvers, ballsInOver)

	if d.IsWicket {
		in.FallOfWickets = append(in.FallOfWickets, models.FallOfWicket{
			WicketNumber: in.TotalWickets,
			PlayerID:     d.DismissedBatter,
			ScoreAtFall:  in.TotalRuns,
			OversAtFall:  in.TotalOvers,
			Bowler:       d.Bowler,
			Fielder:      d.Fielder,
		})
	}

	// 6. strike rotation: odd runs off a legal non-wicket ball, then the
	// unconditional end-of-over swap, compounding when both apply
	if c.Legal && !d.IsWicket && d.RunsOffBat%2 == 1 {
		in.Striker, in.NonStriker = in.NonStriker, in.Striker
	}
	if overCompleted {
		in.Striker, in.NonStriker = in.NonStriker, in.Striker
	}

	// 10. statistics tables (before completion handling so quota checks
	// see the finished over)
	applyDeliveryStats(in, d, c)

	// 9. innings completion check
	allOut := in.TotalWickets >= 10
	oversExhausted := completedOvers >= m.TotalOvers
	inningsCompleted := false
	if allOut || oversExhausted {
		in.Completed = true
		inningsCompleted = true
		if allOut {
			in.EndReason = models.EndReasonAllOut
		} else {
			in.EndReason = models.EndReasonOversCompleted
		}
		in.CurrentBowler = ""
		in.CurrentOverID = ""
		out.Signals = append(out.Signals, SignalInningsComplete)

		if in.InningsNumber == 1 {
			m.Target = in.TotalRuns + 1
			m.CurrentInnings = 2
		} else {
			m.Status = models.StatusCompleted
		}
	}

	// 7. over completion: record the finished bowler for the
	// no-consecutive-overs rule, then resolve the next over
	var nextOver *models.Over
	var bowlerEvents []models.MatchEvent
	if overCompleted {
		out.Signals = append(out.Signals, SignalOverComplete)
		in.PreviousOverBowler = ov.Bowler

		if !inningsCompleted {
			in.CurrentBowler = ""
			in.CurrentOverID = ""
			nextOver, bowlerEvents = resolveNextOver(in, &m, ov, &out)
		}
	}
	out.NextOver = nextOver

	// 11. match mirror
	m.CurrentScore = models.Score{
		Runs:    in.TotalRuns,
		Wickets: in.TotalWickets,
		Overs:   in.TotalOvers,
	}
	in.UpdatedAt = time.Now().UTC()
	m.UpdatedAt = in.UpdatedAt

	out.Delivery = d
	out.Innings = in
	out.Over = ov
	out.Match = &m
	out.Events = buildEvents(&out, d, in, ov, overCompleted, inningsCompleted, bowlerEvents)
	return &out, nil
}

// resolveNextOver validates any pre-nominated bowler and either
// auto-creates the next over or asks the scorer to choose. Invalid
// nominations are cleared, leaving the innings awaiting a bowler.
func resolveNextOver(in *models.Innings, m *models.Match, finished *models.Over, out *Outcome) (*models.Over, []models.MatchEvent) {
	now := time.Now().UTC()
	nominee := in.NextBowler

	if nominee == "" {
		out.Signals = append(out.Signals, SignalNewBowlerRequired)
		return nil, []models.MatchEvent{{
			Type:      models.EventChooseBowler,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.ChooseBowlerPayload{
				Reason:  models.RejectNoBowler,
				Message: "Select a bowler to start the next over.",
			},
			Timestamp: now,
		}}
	}

	if err := ValidateNomination(in, m, nominee); err != nil {
		in.NextBowler = ""
		out.Signals = append(out.Signals, SignalNewBowlerRequired)
		nomErr := err.(*NominationError)
		return nil, []models.MatchEvent{
			{
				Type:      models.EventBowlerNotAllowed,
				MatchID:   in.MatchID,
				InningsID: in.ID,
				Payload: models.BowlerNotAllowedPayload{
					Reason:  nomErr.Reason,
					Bowler:  nomErr.Bowler,
					Message: nomErr.Msg,
				},
				Timestamp: now,
			},
			{
				Type:      models.EventChooseBowler,
				MatchID:   in.MatchID,
				InningsID: in.ID,
				Payload: models.ChooseBowlerPayload{
					Reason:  nomErr.Reason,
					Message: "Select a different bowler for the next over.",
				},
				Timestamp: now,
			},
		}
	}

	next := &models.Over{
		ID:         uuid.New().String(),
		MatchID:    in.MatchID,
		InningsID:  in.ID,
		OverNumber: finished.OverNumber + 1,
		Bowler:     nominee,
		CreatedAt:  now,
	}
	in.CurrentOverID = next.ID
	in.CurrentBowler = nominee
	in.NextBowler = ""
	return next, nil
}

// buildEvents assembles the ordered notification payload: live score,
// ball added, commentary, then phase-transition events.
func buildEvents(out *Outcome, d models.Delivery, in *models.Innings, ov *models.Over, overCompleted, inningsCompleted bool, bowlerEvents []models.MatchEvent) []models.MatchEvent {
	now := time.Now().UTC()
	last := d

	events := []models.MatchEvent{
		{
			Type:      models.EventLiveScoreUpdate,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.LiveScorePayload{
				Runs:          in.TotalRuns,
				Wickets:       in.TotalWickets,
				Overs:         in.TotalOvers,
				Striker:       in.Striker,
				NonStriker:    in.NonStriker,
				CurrentBowler: in.CurrentBowler,
				BatterStats:   in.BatterStats,
				BowlerStats:   in.BowlerStats,
				FallOfWickets: in.FallOfWickets,
				LastBall:      &last,
			},
			Timestamp: now,
		},
		{
			Type:      models.EventBallAdded,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.BallAddedPayload{
				Delivery:   d,
				OverID:     ov.ID,
				OverNumber: ov.OverNumber,
			},
			Timestamp: now,
		},
	}

	text, ctype := GenerateCommentary(d, d.Striker, in.TotalOvers)
	events = append(events, models.MatchEvent{
		Type:      models.EventNewCommentary,
		MatchID:   in.MatchID,
		InningsID: in.ID,
		Payload: models.CommentaryPayload{
			Text: text,
			Type: ctype,
			Over: in.TotalOvers,
		},
		Timestamp: now,
	})

	if overCompleted {
		events = append(events, models.MatchEvent{
			Type:      models.EventOverComplete,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.OverCompletePayload{
				OverNumber: ov.OverNumber,
				Bowler:     ov.Bowler,
			},
			Timestamp: now,
		})
	}

	if d.IsWicket && !inningsCompleted {
		events = append(events, models.MatchEvent{
			Type:      models.EventNewBatterNeeded,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.NewBatterPayload{
				Slot:      "striker",
				Dismissed: d.DismissedBatter,
				Message:   "Select new batter (striker).",
			},
			Timestamp: now,
		})
	}

	events = append(events, bowlerEvents...)

	if inningsCompleted {
		events = append(events, models.MatchEvent{
			Type:      models.EventInningsComplete,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.InningsCompletePayload{
				InningsID: in.ID,
				Runs:      in.TotalRuns,
				Wickets:   in.TotalWickets,
				Reason:    in.EndReason,
			},
			Timestamp: now,
		})
	}
	return events
}
