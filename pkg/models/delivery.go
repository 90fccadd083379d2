package models

import "time"

// ExtraType classifies a delivery's extra, if any
type ExtraType string

const (
	ExtraNone   ExtraType = "none"
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "noball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "legbye"
)

// Valid reports whether the extra type is a known value
func (e ExtraType) Valid() bool {
	switch e {
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return true
	}
	return false
}

// WicketKind classifies how a batter was dismissed
type WicketKind string

const (
	WicketNone      WicketKind = "none"
	WicketBowled    WicketKind = "bowled"
	WicketCaught    WicketKind = "caught"
	WicketLBW       WicketKind = "lbw"
	WicketRunOut    WicketKind = "runout"
	WicketStumped   WicketKind = "stumped"
	WicketHitWicket WicketKind = "hitwicket"
	WicketRetired   WicketKind = "retired"
)

// Valid reports whether the wicket kind is a known value
func (w WicketKind) Valid() bool {
	switch w {
	case WicketNone, WicketBowled, WicketCaught, WicketLBW,
		WicketRunOut, WicketStumped, WicketHitWicket, WicketRetired:
		return true
	}
	return false
}

// CreditedToBowler reports whether this dismissal counts toward the
// bowler's wicket tally. Run-outs and retirements do not.
func (w WicketKind) CreditedToBowler() bool {
	switch w {
	case WicketBowled, WicketCaught, WicketLBW, WicketStumped, WicketHitWicket:
		return true
	}
	return false
}

// RequiresFielder reports whether the dismissal needs a fielder reference
func (w WicketKind) RequiresFielder() bool {
	switch w {
	case WicketCaught, WicketRunOut, WicketStumped:
		return true
	}
	return false
}

// Delivery is one bowled ball and its outcome. Immutable once persisted;
// undo removes the most recent delivery rather than mutating it.
type Delivery struct {
	ID              string     `json:"id"`
	MatchID         string     `json:"match_id"`
	InningsID       string     `json:"innings_id"`
	OverID          string     `json:"over_id"`
	BallNumber      int        `json:"ball_number"` // legal-ball position within the over
	Striker         string     `json:"striker"`
	NonStriker      string     `json:"non_striker"`
	Bowler          string     `json:"bowler"`
	RunsOffBat      int        `json:"runs"`
	Extra           ExtraType  `json:"extra_type"`
	IsLegal         bool       `json:"is_legal_delivery"`
	IsWicket        bool       `json:"is_wicket"`
	WicketKind      WicketKind `json:"wicket_kind,omitempty"`
	DismissedBatter string     `json:"dismissed_batter,omitempty"`
	Fielder         string     `json:"fielder,omitempty"`
	Commentary      string     `json:"commentary,omitempty"` // optional scorer free-text
	CreatedAt       time.Time  `json:"created_at"`
}

// Over is an ordered collection of deliveries by one bowler within
// one innings. Complete once it holds 6 legal deliveries.
type Over struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	InningsID   string    `json:"innings_id"`
	OverNumber  int       `json:"over_number"` // 1-based
	Bowler      string    `json:"bowler"`
	DeliveryIDs []string  `json:"delivery_ids"`
	LegalCount  int       `json:"legal_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Complete reports whether the over has all 6 legal deliveries
func (o *Over) Complete() bool {
	return o.LegalCount >= 6
}
