package engine

import (
	"github.com/pavilion-live/pavilion/pkg/models"
)

// ensureBatter returns the index of the batter's stats row, appending a
// fresh row when the batter has not faced yet.
func ensureBatter(innings *models.Innings, playerID string) int {
	for i := range innings.BatterStats {
		if innings.BatterStats[i].PlayerID == playerID {
			return i
		}
	}
	innings.BatterStats = append(innings.BatterStats, models.BatterStats{PlayerID: playerID})
	return len(innings.BatterStats) - 1
}

// ensureBowler returns the index of the bowler's stats row, appending a
// fresh row when the bowler has not bowled yet.
func ensureBowler(innings *models.Innings, playerID string) int {
	for i := range innings.BowlerStats {
		if innings.BowlerStats[i].PlayerID == playerID {
			return i
		}
	}
	innings.BowlerStats = append(innings.BowlerStats, models.BowlerStats{PlayerID: playerID})
	return len(innings.BowlerStats) - 1
}

// applyDeliveryStats incrementally updates the batting and bowling tables
// for one delivery.
func applyDeliveryStats(innings *models.Innings, d models.Delivery, c Classification) {
	bi := ensureBatter(innings, d.Striker)
	bat := &innings.BatterStats[bi]

	if facesBall(c) {
		bat.Balls++
	}
	credited := batterCredited(d)
	bat.Runs += credited
	if credited == 4 {
		bat.Fours++
	}
	if credited == 6 {
		bat.Sixes++
	}
	bat.StrikeRate = strikeRate(bat.Runs, bat.Balls)

	if d.IsWicket {
		dismissed := d.DismissedBatter
		if dismissed == "" {
			dismissed = d.Striker
		}
		di := ensureBatter(innings, dismissed)
		innings.BatterStats[di].Out = true
	}

	wi := ensureBowler(innings, d.Bowler)
	bowl := &innings.BowlerStats[wi]

	if c.Legal {
		bowl.LegalBalls++
	}
	bowl.Runs += bowlerConceded(d, c)
	if d.IsWicket && d.WicketKind.CreditedToBowler() {
		bowl.Wickets++
	}
	bowl.Overs = formatOvers(bowl.LegalBalls/6, bowl.LegalBalls%6)
	bowl.Economy = economy(bowl.Runs, bowl.LegalBalls)
}

// RecomputeStats rebuilds the batting and bowling tables from scratch
// out of the given deliveries, in order. Used by undo: recomputation is
// the safe inverse for derived figures like strike rate and economy.
func RecomputeStats(innings *models.Innings, deliveries []models.Delivery) {
	innings.BatterStats = nil
	innings.BowlerStats = nil
	for _, d := range deliveries {
		applyDeliveryStats(innings, d, Classify(d.Extra, d.RunsOffBat))
	}
}

// strikeRate is runs*100/balls, 0 when no balls faced
func strikeRate(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) * 100 / float64(balls)
}

// economy is runs*6/legalBalls, 0 when no legal balls bowled
func economy(runs, legalBalls int) float64 {
	if legalBalls == 0 {
		return 0
	}
	return float64(runs) * 6 / float64(legalBalls)
}
