package engine

import "github.com/pavilion-live/pavilion/pkg/models"

// Classification is the derived legality and extra-run contribution of
// a delivery.
type Classification struct {
	Legal     bool
	ExtraRuns int
}

// Classify derives legality and extra runs from the extra type.
//
// Wides and no-balls carry a flat one-run penalty regardless of the runs
// field; the runs field for those types represents additional running and
// is summed separately by the caller. Byes and leg-byes are legal
// deliveries whose runs field holds the byes themselves. A plain delivery
// credits its runs to the striker.
func Classify(extra models.ExtraType, runsOffBat int) Classification {
	switch extra {
	case models.ExtraWide, models.ExtraNoBall:
		return Classification{Legal: false, ExtraRuns: 1}
	case models.ExtraBye, models.ExtraLegBye:
		return Classification{Legal: true, ExtraRuns: runsOffBat}
	default:
		return Classification{Legal: true, ExtraRuns: 0}
	}
}

// bowlerConceded returns the runs charged to the bowler for a delivery.
// Wides and no-balls count against the bowler (penalty plus running);
// byes and leg-byes do not.
func bowlerConceded(d models.Delivery, c Classification) int {
	switch d.Extra {
	case models.ExtraWide, models.ExtraNoBall:
		return d.RunsOffBat + c.ExtraRuns
	case models.ExtraBye, models.ExtraLegBye:
		return 0
	default:
		return d.RunsOffBat
	}
}

// batterCredited returns the runs credited to the striker's personal
// tally. Only plain deliveries credit the striker.
func batterCredited(d models.Delivery) int {
	if d.Extra == models.ExtraNone {
		return d.RunsOffBat
	}
	return 0
}

// facesBall reports whether the striker is charged a ball faced.
// Legal deliveries only; wides and no-balls do not count.
func facesBall(c Classification) bool {
	return c.Legal
}
