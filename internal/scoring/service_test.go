package scoring

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/pavilion-live/pavilion/internal/engine"
	"github.com/pavilion-live/pavilion/pkg/models"
)

// memStore is an in-memory Store; copies on the way in and out so the
// service cannot alias persisted state, same as a real database.
type memStore struct {
	matches    map[string]*models.Match
	innings    map[string]*models.Innings
	overs      map[string]*models.Over
	deliveries []models.Delivery
	commentary []models.Commentary
}

func newMemStore() *memStore {
	return &memStore{
		matches: make(map[string]*models.Match),
		innings: make(map[string]*models.Innings),
		overs:   make(map[string]*models.Over),
	}
}

func (m *memStore) GetMatch(_ context.Context, id string) (*models.Match, error) {
	mt, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *mt
	return &cp, nil
}

func (m *memStore) UpdateMatch(_ context.Context, mt *models.Match) error {
	cp := *mt
	m.matches[mt.ID] = &cp
	return nil
}

func (m *memStore) CreateInnings(_ context.Context, in *models.Innings) error {
	m.innings[in.ID] = in.Clone()
	return nil
}

func (m *memStore) UpdateInnings(_ context.Context, in *models.Innings) error {
	m.innings[in.ID] = in.Clone()
	return nil
}

func (m *memStore) CurrentInnings(_ context.Context, matchID string) (*models.Innings, error) {
	var best *models.Innings
	for _, in := range m.innings {
		if in.MatchID == matchID && !in.Completed {
			if best == nil || in.InningsNumber > best.InningsNumber {
				best = in
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Clone(), nil
}

func (m *memStore) GetInningsByMatch(_ context.Context, matchID string) ([]models.Innings, error) {
	var list []models.Innings
	for _, in := range m.innings {
		if in.MatchID == matchID {
			list = append(list, *in.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InningsNumber < list[j].InningsNumber })
	return list, nil
}

func (m *memStore) CreateOver(_ context.Context, o *models.Over) error {
	m.overs[o.ID] = models.CloneOver(o)
	return nil
}

func (m *memStore) GetOver(_ context.Context, id string) (*models.Over, error) {
	o, ok := m.overs[id]
	if !ok {
		return nil, nil
	}
	return models.CloneOver(o), nil
}

func (m *memStore) GetOverByNumber(_ context.Context, inningsID string, number int) (*models.Over, error) {
	for _, o := range m.overs {
		if o.InningsID == inningsID && o.OverNumber == number {
			return models.CloneOver(o), nil
		}
	}
	return nil, nil
}

func (m *memStore) GetDeliveriesByInnings(_ context.Context, inningsID string) ([]models.Delivery, error) {
	var list []models.Delivery
	for _, d := range m.deliveries {
		if d.InningsID == inningsID {
			list = append(list, d)
		}
	}
	return list, nil
}

func (m *memStore) LatestDelivery(_ context.Context, inningsID string) (*models.Delivery, error) {
	for i := len(m.deliveries) - 1; i >= 0; i-- {
		if m.deliveries[i].InningsID == inningsID {
			d := m.deliveries[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memStore) ApplyOutcome(_ context.Context, d *models.Delivery, over, nextOver *models.Over,
	in *models.Innings, mt *models.Match, cm *models.Commentary) error {
	m.deliveries = append(m.deliveries, *d)
	if cm != nil {
		m.commentary = append(m.commentary, *cm)
	}
	m.overs[over.ID] = models.CloneOver(over)
	if nextOver != nil {
		m.overs[nextOver.ID] = models.CloneOver(nextOver)
	}
	m.innings[in.ID] = in.Clone()
	cp := *mt
	m.matches[mt.ID] = &cp
	return nil
}

func (m *memStore) ApplyReversal(_ context.Context, removedDeliveryID string, over *models.Over,
	orphanOverID string, in *models.Innings, mt *models.Match) error {
	for i, d := range m.deliveries {
		if d.ID == removedDeliveryID {
			m.deliveries = append(m.deliveries[:i], m.deliveries[i+1:]...)
			break
		}
	}
	for i, cm := range m.commentary {
		if cm.BallID == removedDeliveryID {
			m.commentary = append(m.commentary[:i], m.commentary[i+1:]...)
			break
		}
	}
	if orphanOverID != "" {
		delete(m.overs, orphanOverID)
	}
	m.overs[over.ID] = models.CloneOver(over)
	m.innings[in.ID] = in.Clone()
	cp := *mt
	m.matches[mt.ID] = &cp
	return nil
}

type memPublisher struct {
	events []models.MatchEvent
}

func (p *memPublisher) PublishEvents(_ context.Context, _ string, events []models.MatchEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type memCache struct {
	live map[string]*models.LiveScorePayload
}

func (c *memCache) SetLiveScore(_ context.Context, matchID string, p *models.LiveScorePayload) error {
	if c.live == nil {
		c.live = make(map[string]*models.LiveScorePayload)
	}
	c.live[matchID] = p
	return nil
}

func (c *memCache) InvalidateMatch(_ context.Context, matchID string) error {
	delete(c.live, matchID)
	return nil
}

func fixture(t *testing.T) (*Service, *memStore, *memPublisher, *memCache) {
	t.Helper()
	st := newMemStore()
	pub := &memPublisher{}
	cache := &memCache{}
	svc := NewService(st, pub, cache)

	st.matches["m1"] = &models.Match{
		ID: "m1", Name: "Falcons v Ravens", Type: models.MatchT20,
		TeamA: "falcons", TeamB: "ravens", TotalOvers: 20,
		Status: models.StatusUpcoming,
	}
	return svc, st, pub, cache
}

func startInnings(t *testing.T, svc *Service) *models.Innings {
	t.Helper()
	in, err := svc.StartInnings(context.Background(), "m1", InningsRequest{
		BattingTeam: "falcons", BowlingTeam: "ravens",
		Striker: "s1", NonStriker: "s2", OpeningBowler: "b1",
	})
	if err != nil {
		t.Fatalf("StartInnings: %v", err)
	}
	return in
}

func TestSubmitDeliveryPersistsAndPublishes(t *testing.T) {
	svc, st, pub, cache := fixture(t)
	startInnings(t, svc)

	out, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{RunsOffBat: 4})
	if err != nil {
		t.Fatalf("SubmitDelivery: %v", err)
	}

	if len(st.deliveries) != 1 {
		t.Fatalf("expected 1 persisted delivery, got %d", len(st.deliveries))
	}
	if st.deliveries[0].Bowler != "b1" || st.deliveries[0].Striker != "s1" {
		t.Errorf("delivery not stamped from live state: %+v", st.deliveries[0])
	}
	if len(st.commentary) != 1 {
		t.Fatalf("expected 1 commentary row, got %d", len(st.commentary))
	}
	if st.commentary[0].Type != models.CommentaryFour {
		t.Errorf("commentary type = %s, want FOUR", st.commentary[0].Type)
	}

	in := st.innings[out.Innings.ID]
	if in.TotalRuns != 4 || in.TotalOvers != "0.1" {
		t.Errorf("persisted innings = %d runs %s overs", in.TotalRuns, in.TotalOvers)
	}

	if cache.live["m1"] == nil || cache.live["m1"].Runs != 4 {
		t.Errorf("live score not cached: %+v", cache.live["m1"])
	}
	if len(pub.events) != len(out.Events) {
		t.Errorf("published %d events, outcome had %d", len(pub.events), len(out.Events))
	}
}

func TestSubmitDeliveryRequiresBowlerSelection(t *testing.T) {
	svc, st, _, _ := fixture(t)
	in := startInnings(t, svc)

	stored := st.innings[in.ID]
	stored.CurrentOverID = ""
	stored.CurrentBowler = ""

	_, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{RunsOffBat: 1})
	if !errors.Is(err, ErrAwaitingBowler) {
		t.Fatalf("err = %v, want ErrAwaitingBowler", err)
	}
}

func TestSubmitDeliveryRejectsNonLiveMatch(t *testing.T) {
	svc, st, _, _ := fixture(t)
	startInnings(t, svc)
	st.matches["m1"].Status = models.StatusPostponed

	_, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{})
	if !errors.Is(err, ErrMatchNotLive) {
		t.Fatalf("err = %v, want ErrMatchNotLive", err)
	}
}

func TestSubmitDeliveryRequiresFielderForCatchingDismissals(t *testing.T) {
	svc, st, _, _ := fixture(t)
	startInnings(t, svc)

	for _, kind := range []models.WicketKind{models.WicketCaught, models.WicketRunOut, models.WicketStumped} {
		_, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{
			IsWicket:        true,
			WicketKind:      kind,
			DismissedBatter: "s1",
		})
		if !errors.Is(err, ErrFielderRequired) {
			t.Errorf("%s without fielder: err = %v, want ErrFielderRequired", kind, err)
		}
	}
	if len(st.deliveries) != 0 {
		t.Fatalf("deliveries persisted = %d, want 0", len(st.deliveries))
	}

	// bowled needs no fielder
	out, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{
		IsWicket:        true,
		WicketKind:      models.WicketBowled,
		DismissedBatter: "s1",
	})
	if err != nil {
		t.Fatalf("bowled without fielder: %v", err)
	}
	if !out.Delivery.IsWicket {
		t.Fatal("wicket not recorded")
	}
}

func TestNominateBowlerMidOverStoresNomination(t *testing.T) {
	svc, st, _, _ := fixture(t)
	in := startInnings(t, svc)

	got, err := svc.NominateBowler(context.Background(), "m1", "b2")
	if err != nil {
		t.Fatalf("NominateBowler: %v", err)
	}
	if got.NextBowler != "b2" {
		t.Errorf("NextBowler = %q, want b2", got.NextBowler)
	}
	if got.CurrentBowler != "b1" {
		t.Errorf("mid-over nomination must not change the current bowler, got %q", got.CurrentBowler)
	}
	if st.innings[in.ID].NextBowler != "b2" {
		t.Errorf("nomination not persisted")
	}
}

func TestNominateBowlerCreatesOverWhenAwaiting(t *testing.T) {
	svc, st, _, _ := fixture(t)
	in := startInnings(t, svc)

	// finish the first over with no nomination
	for i := 0; i < 6; i++ {
		if _, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{}); err != nil {
			t.Fatalf("ball %d: %v", i+1, err)
		}
	}
	if st.innings[in.ID].CurrentOverID != "" {
		t.Fatalf("expected awaiting-bowler state after the over")
	}

	got, err := svc.NominateBowler(context.Background(), "m1", "b2")
	if err != nil {
		t.Fatalf("NominateBowler: %v", err)
	}
	if got.CurrentBowler != "b2" || got.CurrentOverID == "" {
		t.Fatalf("next over not opened: bowler=%q over=%q", got.CurrentBowler, got.CurrentOverID)
	}
	over := st.overs[got.CurrentOverID]
	if over == nil || over.OverNumber != 2 || over.Bowler != "b2" {
		t.Errorf("persisted over = %+v, want over 2 by b2", over)
	}
}

func TestNominateBowlerRejectsConsecutive(t *testing.T) {
	svc, _, _, _ := fixture(t)
	startInnings(t, svc)

	for i := 0; i < 6; i++ {
		if _, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{}); err != nil {
			t.Fatalf("ball %d: %v", i+1, err)
		}
	}

	_, err := svc.NominateBowler(context.Background(), "m1", "b1")
	var nomErr *engine.NominationError
	if !errors.As(err, &nomErr) {
		t.Fatalf("err = %v, want NominationError", err)
	}
	if nomErr.Reason != models.RejectConsecutiveOver {
		t.Errorf("reason = %s, want consecutive_over", nomErr.Reason)
	}
}

func TestUndoRemovesOrphanedNextOver(t *testing.T) {
	svc, st, _, _ := fixture(t)
	in := startInnings(t, svc)

	if _, err := svc.NominateBowler(context.Background(), "m1", "b2"); err != nil {
		t.Fatalf("NominateBowler: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{}); err != nil {
			t.Fatalf("ball %d: %v", i+1, err)
		}
	}

	cur := st.innings[in.ID]
	if cur.CurrentBowler != "b2" {
		t.Fatalf("expected auto-created over for b2, got %q", cur.CurrentBowler)
	}
	orphanID := cur.CurrentOverID

	rev, err := svc.UndoLastDelivery(context.Background(), "m1")
	if err != nil {
		t.Fatalf("UndoLastDelivery: %v", err)
	}

	if _, ok := st.overs[orphanID]; ok {
		t.Errorf("auto-created over %s should have been deleted", orphanID)
	}
	restored := st.innings[in.ID]
	if restored.TotalOvers != "0.5" {
		t.Errorf("overs = %s, want 0.5", restored.TotalOvers)
	}
	if restored.CurrentOverID != rev.Over.ID || restored.CurrentBowler != "b1" {
		t.Errorf("undone over not current again: %+v", restored)
	}
	if len(st.deliveries) != 5 {
		t.Errorf("%d deliveries remain, want 5", len(st.deliveries))
	}
}

func TestUndoWithNoDeliveries(t *testing.T) {
	svc, _, _, _ := fixture(t)
	startInnings(t, svc)

	_, err := svc.UndoLastDelivery(context.Background(), "m1")
	if !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestNewBatterReplacesStriker(t *testing.T) {
	svc, st, _, _ := fixture(t)
	in := startInnings(t, svc)

	if _, err := svc.SubmitDelivery(context.Background(), "m1", DeliveryRequest{
		IsWicket: true, WicketKind: models.WicketBowled,
	}); err != nil {
		t.Fatalf("SubmitDelivery: %v", err)
	}

	got, err := svc.NewBatter(context.Background(), "m1", "s3")
	if err != nil {
		t.Fatalf("NewBatter: %v", err)
	}
	if got.Striker != "s3" || got.NonStriker != "s2" {
		t.Errorf("batters = %s/%s, want s3/s2", got.Striker, got.NonStriker)
	}
	if st.innings[in.ID].Striker != "s3" {
		t.Errorf("replacement not persisted")
	}
}

func TestStartInningsRejectsWhileOneIsOpen(t *testing.T) {
	svc, _, _, _ := fixture(t)
	startInnings(t, svc)

	_, err := svc.StartInnings(context.Background(), "m1", InningsRequest{
		BattingTeam: "ravens", BowlingTeam: "falcons",
		Striker: "r1", NonStriker: "r2", OpeningBowler: "f1",
	})
	if err == nil {
		t.Fatal("expected error starting a second innings while the first is open")
	}
}
