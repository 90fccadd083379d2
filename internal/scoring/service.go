// Package scoring orchestrates live scoring for a match: it serializes
// deliveries per match, runs them through the score engine, persists
// the outcome atomically, and fans the resulting events out to the
// cache and the stream publisher.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavilion-live/pavilion/internal/engine"
	"github.com/pavilion-live/pavilion/pkg/models"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchNotLive    = errors.New("match is not live")
	ErrNoActiveInnings = errors.New("no active innings")
	ErrAwaitingBowler  = errors.New("awaiting bowler selection for the next over")
	ErrNothingToUndo   = errors.New("no deliveries to undo")
	ErrFielderRequired = errors.New("dismissal requires a fielder")
)

// Store is the persistence surface the scoring service needs
type Store interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	UpdateMatch(ctx context.Context, m *models.Match) error

	CreateInnings(ctx context.Context, in *models.Innings) error
	UpdateInnings(ctx context.Context, in *models.Innings) error
	CurrentInnings(ctx context.Context, matchID string) (*models.Innings, error)
	GetInningsByMatch(ctx context.Context, matchID string) ([]models.Innings, error)

	CreateOver(ctx context.Context, o *models.Over) error
	GetOver(ctx context.Context, id string) (*models.Over, error)
	GetOverByNumber(ctx context.Context, inningsID string, number int) (*models.Over, error)

	GetDeliveriesByInnings(ctx context.Context, inningsID string) ([]models.Delivery, error)
	LatestDelivery(ctx context.Context, inningsID string) (*models.Delivery, error)

	ApplyOutcome(ctx context.Context, d *models.Delivery, over, nextOver *models.Over,
		in *models.Innings, m *models.Match, cm *models.Commentary) error
	ApplyReversal(ctx context.Context, removedDeliveryID string, over *models.Over,
		orphanOverID string, in *models.Innings, m *models.Match) error
}

// Publisher pushes match events onto the distribution stream
type Publisher interface {
	PublishEvents(ctx context.Context, matchID string, events []models.MatchEvent) error
}

// Cache mirrors the live score for cheap reads
type Cache interface {
	SetLiveScore(ctx context.Context, matchID string, payload *models.LiveScorePayload) error
	InvalidateMatch(ctx context.Context, matchID string) error
}

// Service is the single writer for live match state. All scoring
// mutations for one match run under that match's lock.
type Service struct {
	store     Store
	publisher Publisher
	cache     Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a scoring service
func NewService(store Store, publisher Publisher, cache Cache) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		cache:     cache,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *Service) matchLock(matchID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[matchID] = l
	}
	return l
}

// DeliveryRequest is the scorer's input for one ball. Striker,
// non-striker and bowler come from live state, not the request.
type DeliveryRequest struct {
	RunsOffBat      int               `json:"runs"`
	Extra           models.ExtraType  `json:"extra_type"`
	IsWicket        bool              `json:"is_wicket"`
	WicketKind      models.WicketKind `json:"wicket_kind"`
	DismissedBatter string            `json:"dismissed_batter"`
	Fielder         string            `json:"fielder"`
	Commentary      string            `json:"commentary"`
}

// SubmitDelivery records one ball for the match's active innings and
// returns the engine outcome after it has been persisted and published.
func (s *Service) SubmitDelivery(ctx context.Context, matchID string, req DeliveryRequest) (*engine.Outcome, error) {
	if req.IsWicket && req.WicketKind.RequiresFielder() && req.Fielder == "" {
		return nil, fmt.Errorf("%w: %s", ErrFielderRequired, req.WicketKind)
	}

	l := s.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	match, innings, err := s.liveState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if innings.CurrentOverID == "" {
		return nil, ErrAwaitingBowler
	}
	over, err := s.store.GetOver(ctx, innings.CurrentOverID)
	if err != nil {
		return nil, err
	}
	if over == nil {
		return nil, fmt.Errorf("current over %s missing", innings.CurrentOverID)
	}

	if req.Extra == "" {
		req.Extra = models.ExtraNone
	}
	d := models.Delivery{
		ID:              uuid.New().String(),
		MatchID:         matchID,
		InningsID:       innings.ID,
		OverID:          over.ID,
		Striker:         innings.Striker,
		NonStriker:      innings.NonStriker,
		Bowler:          over.Bowler,
		RunsOffBat:      req.RunsOffBat,
		Extra:           req.Extra,
		IsWicket:        req.IsWicket,
		WicketKind:      req.WicketKind,
		DismissedBatter: req.DismissedBatter,
		Fielder:         req.Fielder,
		Commentary:      req.Commentary,
		CreatedAt:       time.Now().UTC(),
	}

	outcome, err := engine.ProcessDelivery(d, innings, over, match)
	if err != nil {
		return nil, err
	}

	text, ctype := engine.GenerateCommentary(outcome.Delivery, outcome.Delivery.Striker, outcome.Innings.TotalOvers)
	cm := &models.Commentary{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		InningsID: innings.ID,
		OverID:    over.ID,
		BallID:    outcome.Delivery.ID,
		Text:      text,
		Type:      ctype,
		CreatedAt: outcome.Delivery.CreatedAt,
	}

	if err := s.store.ApplyOutcome(ctx, &outcome.Delivery, outcome.Over, outcome.NextOver,
		outcome.Innings, outcome.Match, cm); err != nil {
		return nil, fmt.Errorf("persist delivery: %w", err)
	}

	s.distribute(ctx, outcome.Match, outcome.Events)
	return outcome, nil
}

// UndoLastDelivery retracts the chronologically last delivery of the
// match and restores the prior state exactly.
func (s *Service) UndoLastDelivery(ctx context.Context, matchID string) (*engine.ReversalOutcome, error) {
	l := s.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}

	// the last delivery can live in an innings that just completed, so
	// search innings from the most recent backwards
	all, err := s.store.GetInningsByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var innings *models.Innings
	var last *models.Delivery
	for i := len(all) - 1; i >= 0; i-- {
		d, err := s.store.LatestDelivery(ctx, all[i].ID)
		if err != nil {
			return nil, err
		}
		if d != nil {
			innings = &all[i]
			last = d
			break
		}
	}
	if last == nil {
		return nil, ErrNothingToUndo
	}

	over, err := s.store.GetOver(ctx, last.OverID)
	if err != nil {
		return nil, err
	}
	if over == nil {
		return nil, fmt.Errorf("over %s missing", last.OverID)
	}

	deliveries, err := s.store.GetDeliveriesByInnings(ctx, innings.ID)
	if err != nil {
		return nil, err
	}
	remaining := make([]models.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d.ID != last.ID {
			remaining = append(remaining, d)
		}
	}

	prevBowler := ""
	if over.OverNumber > 1 {
		prev, err := s.store.GetOverByNumber(ctx, innings.ID, over.OverNumber-1)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			prevBowler = prev.Bowler
		}
	}

	rev, err := engine.ReverseDelivery(*last, innings, over, match, remaining, prevBowler)
	if err != nil {
		return nil, err
	}

	// an over auto-created after this ball closed its over is now orphaned
	orphanOverID := ""
	if innings.CurrentOverID != "" && innings.CurrentOverID != over.ID {
		orphanOverID = innings.CurrentOverID
	}

	if err := s.store.ApplyReversal(ctx, last.ID, rev.Over, orphanOverID, rev.Innings, rev.Match); err != nil {
		return nil, fmt.Errorf("persist reversal: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMatch(ctx, matchID); err != nil {
			log.Printf("⚠️  Failed to invalidate cache for match %s: %v", matchID, err)
		}
	}
	s.distribute(ctx, rev.Match, rev.Events)
	return rev, nil
}

// NominateBowler records the bowler for the next over. Mid-over the
// nomination is stored and validated again when the over completes;
// when the innings is already awaiting a bowler the next over is
// created immediately.
func (s *Service) NominateBowler(ctx context.Context, matchID, bowler string) (*models.Innings, error) {
	l := s.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	match, innings, err := s.liveState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateNomination(innings, match, bowler); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if innings.CurrentOverID == "" {
		completed, _ := engine.ParseOvers(innings.TotalOvers)
		over := &models.Over{
			ID:         uuid.New().String(),
			MatchID:    matchID,
			InningsID:  innings.ID,
			OverNumber: completed + 1,
			Bowler:     bowler,
			CreatedAt:  now,
		}
		if err := s.store.CreateOver(ctx, over); err != nil {
			return nil, err
		}
		innings.CurrentOverID = over.ID
		innings.CurrentBowler = bowler
		innings.NextBowler = ""
	} else {
		innings.NextBowler = bowler
	}
	innings.UpdatedAt = now
	if err := s.store.UpdateInnings(ctx, innings); err != nil {
		return nil, err
	}

	s.distribute(ctx, match, []models.MatchEvent{liveScoreEvent(innings, nil)})
	return innings, nil
}

// NewBatter replaces the dismissed striker with the chosen batter
func (s *Service) NewBatter(ctx context.Context, matchID, batter string) (*models.Innings, error) {
	l := s.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	match, innings, err := s.liveState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	innings.Striker = batter
	innings.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateInnings(ctx, innings); err != nil {
		return nil, err
	}

	s.distribute(ctx, match, []models.MatchEvent{liveScoreEvent(innings, nil)})
	return innings, nil
}

// InningsRequest opens an innings with its openers and opening bowler
type InningsRequest struct {
	BattingTeam   string `json:"batting_team"`
	BowlingTeam   string `json:"bowling_team"`
	Striker       string `json:"striker"`
	NonStriker    string `json:"non_striker"`
	OpeningBowler string `json:"opening_bowler"`
}

// StartInnings creates the next innings of a match along with its first
// over, and moves an upcoming match to live.
func (s *Service) StartInnings(ctx context.Context, matchID string, req InningsRequest) (*models.Innings, error) {
	l := s.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.Status == models.StatusCompleted || match.Status == models.StatusAbandoned {
		return nil, ErrMatchNotLive
	}
	open, err := s.store.CurrentInnings(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("innings %d is still in progress", open.InningsNumber)
	}

	now := time.Now().UTC()
	number := match.CurrentInnings
	if number == 0 {
		number = 1
	}
	innings := &models.Innings{
		ID:            uuid.New().String(),
		MatchID:       matchID,
		BattingTeam:   req.BattingTeam,
		BowlingTeam:   req.BowlingTeam,
		InningsNumber: number,
		TotalOvers:    "0.0",
		Striker:       req.Striker,
		NonStriker:    req.NonStriker,
		CurrentBowler: req.OpeningBowler,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	over := &models.Over{
		ID:         uuid.New().String(),
		MatchID:    matchID,
		InningsID:  innings.ID,
		OverNumber: 1,
		Bowler:     req.OpeningBowler,
		CreatedAt:  now,
	}
	innings.CurrentOverID = over.ID

	if err := s.store.CreateInnings(ctx, innings); err != nil {
		return nil, err
	}
	if err := s.store.CreateOver(ctx, over); err != nil {
		return nil, err
	}

	match.Status = models.StatusLive
	match.CurrentInnings = number
	match.CurrentScore = models.Score{Overs: "0.0"}
	match.UpdatedAt = now
	if err := s.store.UpdateMatch(ctx, match); err != nil {
		return nil, err
	}

	s.distribute(ctx, match, []models.MatchEvent{liveScoreEvent(innings, nil)})
	return innings, nil
}

// liveState loads the match and its open innings, enforcing liveness
func (s *Service) liveState(ctx context.Context, matchID string) (*models.Match, *models.Innings, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match == nil {
		return nil, nil, ErrMatchNotFound
	}
	if match.Status != models.StatusLive {
		return nil, nil, ErrMatchNotLive
	}
	innings, err := s.store.CurrentInnings(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if innings == nil {
		return nil, nil, ErrNoActiveInnings
	}
	return match, innings, nil
}

// distribute mirrors the latest live score into the cache and publishes
// the event batch. Both are best effort; persisted state is the truth.
func (s *Service) distribute(ctx context.Context, m *models.Match, events []models.MatchEvent) {
	matchID := m.ID
	for i := range events {
		events[i].Teams = []string{m.TeamA, m.TeamB}
	}
	for _, ev := range events {
		if ev.Type != models.EventLiveScoreUpdate {
			continue
		}
		if p, ok := ev.Payload.(models.LiveScorePayload); ok && s.cache != nil {
			if err := s.cache.SetLiveScore(ctx, matchID, &p); err != nil {
				log.Printf("⚠️  Failed to cache live score for match %s: %v", matchID, err)
			}
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvents(ctx, matchID, events); err != nil {
			log.Printf("⚠️  Failed to publish events for match %s: %v", matchID, err)
		}
	}
}

func liveScoreEvent(in *models.Innings, last *models.Delivery) models.MatchEvent {
	return models.MatchEvent{
		Type:      models.EventLiveScoreUpdate,
		MatchID:   in.MatchID,
		InningsID: in.ID,
		Payload: models.LiveScorePayload{
			Runs:          in.TotalRuns,
			Wickets:       in.TotalWickets,
			Overs:         in.TotalOvers,
			Striker:       in.Striker,
			NonStriker:    in.NonStriker,
			CurrentBowler: in.CurrentBowler,
			BatterStats:   in.BatterStats,
			BowlerStats:   in.BowlerStats,
			FallOfWickets: in.FallOfWickets,
			LastBall:      last,
		},
		Timestamp: time.Now().UTC(),
	}
}
