package engine

import (
	"fmt"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// MaxOversPerBowler returns the per-bowler over quota for a limited-overs
// match: floor(matchOvers / 5).
func MaxOversPerBowler(match *models.Match) int {
	return match.TotalOvers / 5
}

// NominationError is a business-rule rejection of a bowler nomination.
// It is not fatal; the innings stays in a well-defined awaiting-bowler
// state and the scorer is asked to pick someone else.
type NominationError struct {
	Reason models.BowlerRejectionReason
	Bowler string
	Msg    string
}

func (e *NominationError) Error() string {
	return fmt.Sprintf("bowler %s not allowed: %s", e.Bowler, e.Reason)
}

// ValidateNomination checks a would-be bowler for the next over against
// the no-consecutive-overs rule and the per-bowler quota.
func ValidateNomination(innings *models.Innings, match *models.Match, bowler string) error {
	if bowler == innings.PreviousOverBowler && bowler != "" {
		return &NominationError{
			Reason: models.RejectConsecutiveOver,
			Bowler: bowler,
			Msg:    "Bowler cannot bowl consecutive overs. Please select another bowler.",
		}
	}

	max := MaxOversPerBowler(match)
	bowled := oversBowled(innings, bowler)
	if max > 0 && bowled >= max {
		return &NominationError{
			Reason: models.RejectMaxOversReached,
			Bowler: bowler,
			Msg:    fmt.Sprintf("This bowler has already bowled %d overs (max %d). Choose a different bowler.", bowled, max),
		}
	}
	return nil
}

// oversBowled counts a bowler's completed overs from their legal-ball tally
func oversBowled(innings *models.Innings, bowler string) int {
	for _, bs := range innings.BowlerStats {
		if bs.PlayerID == bowler {
			return bs.LegalBalls / 6
		}
	}
	return 0
}
