package models

import "time"

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
	StatusAbandoned MatchStatus = "abandoned"
	StatusPostponed MatchStatus = "postponed"
)

// MatchType determines the default overs allocation
type MatchType string

const (
	MatchT20   MatchType = "T20"
	MatchODI   MatchType = "ODI"
	MatchOther MatchType = "OTHER"
)

// DefaultOvers returns the standard overs count for a match type
func (t MatchType) DefaultOvers() int {
	switch t {
	case MatchODI:
		return 50
	default:
		return 20
	}
}

// Score is the live score mirror kept on the match
type Score struct {
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   string `json:"overs"`
}

// Match is one fixture between two teams
type Match struct {
	ID          string      `json:"id"`
	MatchNumber int         `json:"match_number"`
	Name        string      `json:"name"`
	Type        MatchType   `json:"match_type"`
	TeamA       string      `json:"team_a"`
	TeamB       string      `json:"team_b"`
	TossWinner  string      `json:"toss_winner,omitempty"`
	ElectedTo   string      `json:"elected_to,omitempty"` // "bat" or "bowl"
	TotalOvers  int         `json:"overs"`
	Status      MatchStatus `json:"status"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Venue       string      `json:"venue,omitempty"`

	CurrentInnings int   `json:"current_innings"` // 1 or 2, 0 before start
	CurrentScore   Score `json:"current_score"`

	// Target is runs+1 of the first innings, set when it closes
	Target     int    `json:"target,omitempty"`
	WinnerTeam string `json:"winner_team,omitempty"`

	StatusReason string `json:"status_reason,omitempty"` // "Rain", "Wet outfield"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Team is a participating side
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Player belongs to a team
type Player struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"` // batter, bowler, allrounder, keeper
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Commentary is one persisted commentary line for a delivery
type Commentary struct {
	ID        string         `json:"id"`
	MatchID   string         `json:"match_id"`
	InningsID string         `json:"innings_id"`
	OverID    string         `json:"over_id"`
	BallID    string         `json:"ball_id"`
	Text      string         `json:"text"`
	Type      CommentaryType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
}
