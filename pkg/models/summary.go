package models

// ExtrasBreakdown counts extra runs per type for an innings
type ExtrasBreakdown struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
	Total   int `json:"total"`
}

// InningsCard is the read-side summary of one innings
type InningsCard struct {
	InningsID     string          `json:"innings_id"`
	TeamID        string          `json:"team_id"`
	Runs          int             `json:"runs"`
	Wickets       int             `json:"wickets"`
	Overs         string          `json:"overs"`
	Extras        ExtrasBreakdown `json:"extras"`
	RunRate       float64         `json:"run_rate"`
	BatterStats   []BatterStats   `json:"batter_stats"`
	BowlerStats   []BowlerStats   `json:"bowler_stats"`
	FallOfWickets []FallOfWicket  `json:"fall_of_wickets"`
}

// TopScorer is the highest run-maker across the match
type TopScorer struct {
	PlayerID string `json:"player_id"`
	Runs     int    `json:"runs"`
}

// BestBowler is the top wicket-taker across the match
type BestBowler struct {
	PlayerID     string `json:"player_id"`
	Wickets      int    `json:"wickets"`
	RunsConceded int    `json:"runs_conceded"`
}

// MatchSummary is the aggregated post-match (or live) scorecard
type MatchSummary struct {
	MatchID    string        `json:"match_id"`
	TeamA      string        `json:"team_a"`
	TeamB      string        `json:"team_b"`
	Innings    []InningsCard `json:"innings"`
	TopScorer  *TopScorer    `json:"top_scorer,omitempty"`
	BestBowler *BestBowler   `json:"best_bowler,omitempty"`
	WinnerTeam string        `json:"winner_team,omitempty"`
	ResultText string        `json:"result_text,omitempty"`
}
