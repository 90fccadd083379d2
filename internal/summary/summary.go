// Package summary builds the aggregated match scorecard from persisted
// innings and deliveries.
package summary

import (
	"fmt"

	"github.com/pavilion-live/pavilion/internal/engine"
	"github.com/pavilion-live/pavilion/pkg/models"
)

// Build assembles the match summary. deliveries maps innings ID to that
// innings' deliveries in chronological order.
func Build(match *models.Match, innings []models.Innings, deliveries map[string][]models.Delivery) *models.MatchSummary {
	s := &models.MatchSummary{
		MatchID:    match.ID,
		TeamA:      match.TeamA,
		TeamB:      match.TeamB,
		WinnerTeam: match.WinnerTeam,
	}

	for _, in := range innings {
		s.Innings = append(s.Innings, buildCard(&in, deliveries[in.ID]))
	}

	s.TopScorer = topScorer(innings)
	s.BestBowler = bestBowler(innings)

	if match.Status == models.StatusCompleted && len(innings) == 2 {
		winner, text := result(&innings[0], &innings[1])
		s.WinnerTeam = winner
		s.ResultText = text
	} else if match.Status == models.StatusAbandoned {
		s.ResultText = "Match abandoned"
		if match.StatusReason != "" {
			s.ResultText = fmt.Sprintf("Match abandoned (%s)", match.StatusReason)
		}
	}
	return s
}

func buildCard(in *models.Innings, deliveries []models.Delivery) models.InningsCard {
	return models.InningsCard{
		InningsID:     in.ID,
		TeamID:        in.BattingTeam,
		Runs:          in.TotalRuns,
		Wickets:       in.TotalWickets,
		Overs:         in.TotalOvers,
		Extras:        extras(deliveries),
		RunRate:       runRate(in.TotalRuns, in.TotalOvers),
		BatterStats:   in.BatterStats,
		BowlerStats:   in.BowlerStats,
		FallOfWickets: in.FallOfWickets,
	}
}

// extras tallies extra runs by type. Wides and no-balls count the flat
// penalty plus any runs taken on the ball, since neither credits the
// striker; byes and leg byes count the runs actually run. Keeping the
// split this way makes card.Runs equal batter runs plus extras.
func extras(deliveries []models.Delivery) models.ExtrasBreakdown {
	var e models.ExtrasBreakdown
	for _, d := range deliveries {
		switch d.Extra {
		case models.ExtraWide:
			e.Wides += 1 + d.RunsOffBat
		case models.ExtraNoBall:
			e.NoBalls += 1 + d.RunsOffBat
		case models.ExtraBye:
			e.Byes += d.RunsOffBat
		case models.ExtraLegBye:
			e.LegByes += d.RunsOffBat
		}
	}
	e.Total = e.Wides + e.NoBalls + e.Byes + e.LegByes
	return e
}

func runRate(runs int, overs string) float64 {
	completed, balls := engine.ParseOvers(overs)
	faced := float64(completed) + float64(balls)/6.0
	if faced == 0 {
		return 0
	}
	return float64(runs) / faced
}

func topScorer(innings []models.Innings) *models.TopScorer {
	var best *models.TopScorer
	for _, in := range innings {
		for _, bs := range in.BatterStats {
			if best == nil || bs.Runs > best.Runs {
				best = &models.TopScorer{PlayerID: bs.PlayerID, Runs: bs.Runs}
			}
		}
	}
	return best
}

// bestBowler prefers more wickets, then fewer runs conceded
func bestBowler(innings []models.Innings) *models.BestBowler {
	var best *models.BestBowler
	for _, in := range innings {
		for _, bs := range in.BowlerStats {
			if best == nil || bs.Wickets > best.Wickets ||
				(bs.Wickets == best.Wickets && bs.Runs < best.RunsConceded) {
				best = &models.BestBowler{
					PlayerID:     bs.PlayerID,
					Wickets:      bs.Wickets,
					RunsConceded: bs.Runs,
				}
			}
		}
	}
	return best
}

// result determines the winner from the two completed innings
func result(first, second *models.Innings) (winner, text string) {
	switch {
	case second.TotalRuns > first.TotalRuns:
		margin := 10 - second.TotalWickets
		return second.BattingTeam, fmt.Sprintf("%s won by %d wickets", second.BattingTeam, margin)
	case first.TotalRuns > second.TotalRuns:
		margin := first.TotalRuns - second.TotalRuns
		return first.BattingTeam, fmt.Sprintf("%s won by %d runs", first.BattingTeam, margin)
	default:
		return "", "Match tied"
	}
}
