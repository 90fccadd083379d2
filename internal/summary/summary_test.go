package summary

import (
	"testing"

	"github.com/pavilion-live/pavilion/pkg/models"
)

func TestExtrasBreakdown(t *testing.T) {
	deliveries := []models.Delivery{
		{Extra: models.ExtraWide},                // 1 wide
		{Extra: models.ExtraWide, RunsOffBat: 2}, // wide plus two run = 3 wides
		{Extra: models.ExtraNoBall, RunsOffBat: 4}, // no ball plus four run = 5 no balls
		{Extra: models.ExtraBye, RunsOffBat: 3},
		{Extra: models.ExtraLegBye, RunsOffBat: 1},
		{Extra: models.ExtraNone, RunsOffBat: 6},
	}

	e := extras(deliveries)
	if e.Wides != 4 {
		t.Errorf("wides = %d, want 4", e.Wides)
	}
	if e.NoBalls != 5 {
		t.Errorf("no balls = %d, want 5", e.NoBalls)
	}
	if e.Byes != 3 || e.LegByes != 1 {
		t.Errorf("byes = %d legbyes = %d, want 3 and 1", e.Byes, e.LegByes)
	}
	if e.Total != 13 {
		t.Errorf("total extras = %d, want 13", e.Total)
	}
}

func TestExtrasReconcileWithInningsTotal(t *testing.T) {
	// every run the engine adds to the innings that is not credited to
	// a batter must show up in the extras breakdown
	deliveries := []models.Delivery{
		{Extra: models.ExtraNoBall, RunsOffBat: 2},
		{Extra: models.ExtraWide, RunsOffBat: 1},
		{Extra: models.ExtraBye, RunsOffBat: 4},
		{Extra: models.ExtraNone, RunsOffBat: 3},
	}

	totalRuns := 0
	batterRuns := 0
	for _, d := range deliveries {
		switch d.Extra {
		case models.ExtraWide, models.ExtraNoBall:
			totalRuns += 1 + d.RunsOffBat
		case models.ExtraBye, models.ExtraLegBye:
			totalRuns += d.RunsOffBat
		default:
			totalRuns += d.RunsOffBat
			batterRuns += d.RunsOffBat
		}
	}

	e := extras(deliveries)
	if batterRuns+e.Total != totalRuns {
		t.Errorf("batter runs %d + extras %d = %d, want innings total %d",
			batterRuns, e.Total, batterRuns+e.Total, totalRuns)
	}
}

func TestRunRate(t *testing.T) {
	tests := []struct {
		runs  int
		overs string
		want  float64
	}{
		{60, "10.0", 6.0},
		{45, "4.3", 10.0},
		{0, "0.0", 0},
	}
	for _, tt := range tests {
		if got := runRate(tt.runs, tt.overs); got != tt.want {
			t.Errorf("runRate(%d, %s) = %v, want %v", tt.runs, tt.overs, got, tt.want)
		}
	}
}

func TestResultText(t *testing.T) {
	first := models.Innings{BattingTeam: "falcons", TotalRuns: 160, TotalWickets: 7}

	tests := []struct {
		name       string
		second     models.Innings
		wantWinner string
		wantText   string
	}{
		{
			name:       "chase succeeds",
			second:     models.Innings{BattingTeam: "ravens", TotalRuns: 161, TotalWickets: 4},
			wantWinner: "ravens",
			wantText:   "ravens won by 6 wickets",
		},
		{
			name:       "defence holds",
			second:     models.Innings{BattingTeam: "ravens", TotalRuns: 140, TotalWickets: 10},
			wantWinner: "falcons",
			wantText:   "falcons won by 20 runs",
		},
		{
			name:     "tie",
			second:   models.Innings{BattingTeam: "ravens", TotalRuns: 160, TotalWickets: 8},
			wantText: "Match tied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, text := result(&first, &tt.second)
			if winner != tt.wantWinner || text != tt.wantText {
				t.Errorf("result = (%q, %q), want (%q, %q)", winner, text, tt.wantWinner, tt.wantText)
			}
		})
	}
}

func TestBuildPicksTopPerformers(t *testing.T) {
	match := &models.Match{ID: "m1", TeamA: "falcons", TeamB: "ravens", Status: models.StatusCompleted}
	innings := []models.Innings{
		{
			ID: "i1", BattingTeam: "falcons", TotalRuns: 150, TotalWickets: 6, TotalOvers: "20.0",
			BatterStats: []models.BatterStats{
				{PlayerID: "f1", Runs: 72},
				{PlayerID: "f2", Runs: 40},
			},
			BowlerStats: []models.BowlerStats{
				{PlayerID: "r9", Wickets: 3, Runs: 25},
			},
		},
		{
			ID: "i2", BattingTeam: "ravens", TotalRuns: 151, TotalWickets: 5, TotalOvers: "19.2",
			BatterStats: []models.BatterStats{
				{PlayerID: "r1", Runs: 68},
			},
			BowlerStats: []models.BowlerStats{
				{PlayerID: "f9", Wickets: 3, Runs: 31},
			},
		},
	}

	s := Build(match, innings, nil)

	if s.TopScorer == nil || s.TopScorer.PlayerID != "f1" || s.TopScorer.Runs != 72 {
		t.Errorf("top scorer = %+v, want f1 with 72", s.TopScorer)
	}
	// equal wickets, r9 conceded fewer
	if s.BestBowler == nil || s.BestBowler.PlayerID != "r9" {
		t.Errorf("best bowler = %+v, want r9", s.BestBowler)
	}
	if s.WinnerTeam != "ravens" || s.ResultText != "ravens won by 5 wickets" {
		t.Errorf("result = %q %q", s.WinnerTeam, s.ResultText)
	}
	if len(s.Innings) != 2 || s.Innings[0].RunRate != 7.5 {
		t.Errorf("innings cards = %+v", s.Innings)
	}
}
