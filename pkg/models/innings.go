package models

import "time"

// BatterStats is one row of the innings batting table
type BatterStats struct {
	PlayerID   string  `json:"player_id"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	Out        bool    `json:"out"`
}

// BowlerStats is one row of the innings bowling table
type BowlerStats struct {
	PlayerID   string  `json:"player_id"`
	LegalBalls int     `json:"legal_balls"`
	Overs      string  `json:"overs"` // "completed.balls", e.g. "3.4"
	Runs       int     `json:"runs"`  // conceded, per bowler-extras policy
	Wickets    int     `json:"wickets"`
	Economy    float64 `json:"economy"`
}

// FallOfWicket is one entry of the fall-of-wickets log
type FallOfWicket struct {
	WicketNumber int    `json:"wicket_number"`
	PlayerID     string `json:"player_id"`
	ScoreAtFall  int    `json:"score_at_fall"`
	OversAtFall  string `json:"overs_at_fall"`
	Bowler       string `json:"bowler"`
	Fielder      string `json:"fielder,omitempty"`
}

// InningsEndReason explains why an innings closed
type InningsEndReason string

const (
	EndReasonAllOut         InningsEndReason = "all_out"
	EndReasonOversCompleted InningsEndReason = "overs_completed"
	EndReasonDeclared       InningsEndReason = "declared"
)

// Innings is one team's batting effort. Mutated by every processed
// delivery; the score engine is its only writer while live.
type Innings struct {
	ID            string `json:"id"`
	MatchID       string `json:"match_id"`
	BattingTeam   string `json:"batting_team"`
	BowlingTeam   string `json:"bowling_team"`
	InningsNumber int    `json:"innings_number"` // 1 or 2

	TotalRuns    int    `json:"total_runs"`
	TotalWickets int    `json:"total_wickets"` // 0-10
	TotalOvers   string `json:"total_overs"`   // "completedOvers.legalBalls", e.g. "4.3"

	Striker       string `json:"striker"`
	NonStriker    string `json:"non_striker"`
	CurrentBowler string `json:"current_bowler,omitempty"`
	CurrentOverID string `json:"current_over_id,omitempty"`

	// PreviousOverBowler enforces the no-consecutive-overs rule and is
	// restored on undo.
	PreviousOverBowler string `json:"previous_over_bowler,omitempty"`

	// NextBowler is an optional pre-nomination for the following over,
	// validated at over completion.
	NextBowler string `json:"next_bowler,omitempty"`

	BatterStats   []BatterStats  `json:"batter_stats"`
	BowlerStats   []BowlerStats  `json:"bowler_stats"`
	FallOfWickets []FallOfWicket `json:"fall_of_wickets"`

	Completed bool             `json:"completed"`
	EndReason InningsEndReason `json:"end_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy; the engine mutates copies, never its inputs
func (in *Innings) Clone() *Innings {
	out := *in
	out.BatterStats = append([]BatterStats(nil), in.BatterStats...)
	out.BowlerStats = append([]BowlerStats(nil), in.BowlerStats...)
	out.FallOfWickets = append([]FallOfWicket(nil), in.FallOfWickets...)
	return &out
}

// CloneOver returns a deep copy of an over
func CloneOver(o *Over) *Over {
	out := *o
	out.DeliveryIDs = append([]string(nil), o.DeliveryIDs...)
	return &out
}
