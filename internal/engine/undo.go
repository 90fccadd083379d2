package engine

import (
	"time"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// ReversalOutcome is the result of undoing the most recent delivery:
// state restored to exactly what it was before that delivery was
// processed, plus the notification events announcing the retraction.
type ReversalOutcome struct {
	Innings *models.Innings
	Over    *models.Over
	Match   *models.Match

	// RemovedDelivery is the delivery taken off the record
	RemovedDelivery models.Delivery

	Events []models.MatchEvent
}

// ReverseDelivery exactly inverts ProcessDelivery for the most recent
// delivery of a match. Callers enforce chronological ordering at the
// boundary; here the delivery must at least be the last one recorded in
// its over. remaining holds every other delivery of the innings, in
// order, for the from-scratch statistics rebuild. prevOverBowler is the
// bowler of the over before d's over (empty for the first over), needed
// to restore the no-consecutive-overs state when the undone ball had
// closed its over.
func ReverseDelivery(d models.Delivery, innings *models.Innings, over *models.Over, match *models.Match, remaining []models.Delivery, prevOverBowler string) (*ReversalOutcome, error) {
	if innings == nil || over == nil || match == nil {
		return nil, ErrMissingState
	}
	if len(over.DeliveryIDs) == 0 {
		return nil, ErrNothingToUndo
	}
	if over.DeliveryIDs[len(over.DeliveryIDs)-1] != d.ID {
		return nil, ErrNotLatestDelivery
	}

	in := innings.Clone()
	ov := models.CloneOver(over)
	m := *match

	c := Classify(d.Extra, d.RunsOffBat)

	// invert run and wicket accounting
	in.TotalRuns -= d.RunsOffBat + c.ExtraRuns
	if d.IsWicket {
		in.TotalWickets--
		if n := len(in.FallOfWickets); n > 0 {
			in.FallOfWickets = in.FallOfWickets[:n-1]
		}
	}

	// invert ball/over counters, borrowing from the previous over when
	// the balls-in-over counter would go negative
	completedOvers, ballsInOver := ParseOvers(in.TotalOvers)
	overHadCompleted := false
	if c.Legal {
		ballsInOver--
		if ballsInOver < 0 {
			completedOvers--
			ballsInOver = 5
			overHadCompleted = true
		}
	}
	in.TotalOvers = formatOvers(completedOvers, ballsInOver)

	// invert strike rotation under the same conditions; swaps are
	// involutive so re-applying them restores the original ends
	if overHadCompleted {
		in.Striker, in.NonStriker = in.NonStriker, in.Striker
	}
	if c.Legal && !d.IsWicket && d.RunsOffBat%2 == 1 {
		in.Striker, in.NonStriker = in.NonStriker, in.Striker
	}

	// remove the delivery from its over
	ov.DeliveryIDs = ov.DeliveryIDs[:len(ov.DeliveryIDs)-1]
	if c.Legal {
		ov.LegalCount--
	}

	// the undone over becomes current again; any auto-created next over
	// is orphaned and deleted by the caller
	in.CurrentOverID = ov.ID
	in.CurrentBowler = ov.Bowler
	if overHadCompleted {
		in.PreviousOverBowler = prevOverBowler
		// a consumed nomination cannot be recovered; the scorer
		// renominates after the replacement delivery
		in.NextBowler = ""
	}

	// un-mark completion when thresholds no longer hold
	if in.Completed && in.TotalWickets < 10 && completedOvers < m.TotalOvers {
		in.Completed = false
		in.EndReason = ""
		if in.InningsNumber == 1 {
			m.Target = 0
			m.CurrentInnings = 1
		} else if m.Status == models.StatusCompleted {
			m.Status = models.StatusLive
		}
	}

	RecomputeStats(in, remaining)

	m.CurrentScore = models.Score{
		Runs:    in.TotalRuns,
		Wickets: in.TotalWickets,
		Overs:   in.TotalOvers,
	}
	now := time.Now().UTC()
	in.UpdatedAt = now
	m.UpdatedAt = now

	events := []models.MatchEvent{
		{
			Type:      models.EventDeliveryUndone,
			MatchID:   in.MatchID,
			InningsID: in.ID,
			Payload: models.UndonePayload{
				DeliveryID: d.ID,
				Runs:       in.TotalRuns,
				Wickets:    in.TotalWickets,
				Overs:      in.TotalOvers,
			},
			Timestamp: now,
		},
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
			},
			Timestamp: now,
		},
	}

	return &ReversalOutcome{
		Innings:         in,
		Over:            ov,
		Match:           &m,
		RemovedDelivery: d,
		Events:          events,
	}, nil
}
