package models

import "time"

// EventType identifies a notification event emitted by the score engine
type EventType string

const (
	EventLiveScoreUpdate  EventType = "liveScoreUpdate"
	EventBallAdded        EventType = "ballAdded"
	EventNewCommentary    EventType = "newCommentary"
	EventOverComplete     EventType = "overComplete"
	EventInningsComplete  EventType = "inningsComplete"
	EventNewBatterNeeded  EventType = "newBatterNeeded"
	EventChooseBowler     EventType = "chooseBowler"
	EventBowlerNotAllowed EventType = "bowlerNotAllowed"
	EventDeliveryUndone   EventType = "deliveryUndone"

	// websocket-session message types, never published to streams
	EventConnected EventType = "connected"
	EventHeartbeat EventType = "heartbeat"
	EventError     EventType = "error"
)

// CommentaryType is the commentary taxonomy consumers key off
type CommentaryType string

const (
	CommentaryWicket CommentaryType = "WICKET"
	CommentarySix    CommentaryType = "SIX"
	CommentaryFour   CommentaryType = "FOUR"
	CommentaryExtra  CommentaryType = "EXTRA"
	CommentaryNormal CommentaryType = "NORMAL"
	CommentaryDot    CommentaryType = "DOT"
	CommentaryInfo   CommentaryType = "INFO"
)

// BowlerRejectionReason explains why a bowler nomination was refused
type BowlerRejectionReason string

const (
	RejectConsecutiveOver BowlerRejectionReason = "consecutive_over"
	RejectMaxOversReached BowlerRejectionReason = "max_overs_reached"
	RejectNoBowler        BowlerRejectionReason = "no_bowler"
)

// MatchEvent is the envelope published per notification. Teams carries
// the two team IDs so subscription filters can match on either side.
type MatchEvent struct {
	Type      EventType   `json:"type"`
	MatchID   string      `json:"match_id"`
	InningsID string      `json:"innings_id,omitempty"`
	Teams     []string    `json:"teams,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// LiveScorePayload carries the full live scorecard state
type LiveScorePayload struct {
	Runs          int            `json:"runs"`
	Wickets       int            `json:"wickets"`
	Overs         string         `json:"overs"`
	Striker       string         `json:"striker"`
	NonStriker    string         `json:"non_striker"`
	CurrentBowler string         `json:"current_bowler,omitempty"`
	BatterStats   []BatterStats  `json:"batter_stats"`
	BowlerStats   []BowlerStats  `json:"bowler_stats"`
	FallOfWickets []FallOfWicket `json:"fall_of_wickets"`
	LastBall      *Delivery      `json:"last_ball,omitempty"`
}

// BallAddedPayload announces a recorded delivery
type BallAddedPayload struct {
	Delivery   Delivery `json:"delivery"`
	OverID     string   `json:"over_id"`
	OverNumber int      `json:"over_number"`
}

// CommentaryPayload carries a generated commentary line
type CommentaryPayload struct {
	Text string         `json:"text"`
	Type CommentaryType `json:"commentary_type"`
	Over string         `json:"over"`
}

// OverCompletePayload announces a finished over
type OverCompletePayload struct {
	OverNumber int    `json:"over_number"`
	Bowler     string `json:"bowler"`
}

// InningsCompletePayload announces a closed innings
type InningsCompletePayload struct {
	InningsID string           `json:"innings_id"`
	Runs      int              `json:"runs"`
	Wickets   int              `json:"wickets"`
	Reason    InningsEndReason `json:"reason"`
}

// NewBatterPayload asks the scorer to pick a replacement batter
type NewBatterPayload struct {
	Slot      string `json:"which"` // always "striker"
	Dismissed string `json:"dismissed"`
	Message   string `json:"message"`
}

// ChooseBowlerPayload asks the scorer to pick the next over's bowler
type ChooseBowlerPayload struct {
	Reason  BowlerRejectionReason `json:"reason"`
	Message string                `json:"message"`
}

// BowlerNotAllowedPayload explains a rejected bowler nomination
type BowlerNotAllowedPayload struct {
	Reason  BowlerRejectionReason `json:"reason"`
	Bowler  string                `json:"bowler"`
	Message string                `json:"message"`
}

// UndonePayload announces a retracted delivery
type UndonePayload struct {
	DeliveryID string `json:"delivery_id"`
	Runs       int    `json:"runs"`
	Wickets    int    `json:"wickets"`
	Overs      string `json:"overs"`
}
