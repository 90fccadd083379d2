package engine_test

import (
	"errors"
	"testing"

	"github.com/pavilion-live/pavilion/internal/engine"
	"github.com/pavilion-live/pavilion/pkg/models"
)

func testMatch() *models.Match {
	return &models.Match{
		ID:             "m1",
		Type:           models.MatchT20,
		TeamA:          "tA",
		TeamB:          "tB",
		TotalOvers:     20,
		Status:         models.StatusLive,
		CurrentInnings: 1,
	}
}

func testInnings() *models.Innings {
	return &models.Innings{
		ID:            "i1",
		MatchID:       "m1",
		BattingTeam:   "tA",
		BowlingTeam:   "tB",
		InningsNumber: 1,
		TotalOvers:    "0.0",
		Striker:       "s1",
		NonStriker:    "s2",
		CurrentBowler: "b1",
		CurrentOverID: "o1",
	}
}

func testOver() *models.Over {
	return &models.Over{
		ID:         "o1",
		MatchID:    "m1",
		InningsID:  "i1",
		OverNumber: 1,
		Bowler:     "b1",
	}
}

func delivery(runs int, extra models.ExtraType) models.Delivery {
	return models.Delivery{
		MatchID:    "m1",
		InningsID:  "i1",
		OverID:     "o1",
		Striker:    "s1",
		NonStriker: "s2",
		Bowler:     "b1",
		RunsOffBat: runs,
		Extra:      extra,
	}
}

// apply runs a delivery through the engine and feeds the updated state
// back, the way the serialized pipeline does
func apply(t *testing.T, d models.Delivery, in *models.Innings, ov *models.Over, m *models.Match) (*engine.Outcome, *models.Innings, *models.Over, *models.Match) {
	t.Helper()
	out, err := engine.ProcessDelivery(d, in, ov, m)
	if err != nil {
		t.Fatalf("ProcessDelivery: %v", err)
	}
	return out, out.Innings, out.Over, out.Match
}

func TestProcessDeliveryRunAccounting(t *testing.T) {
	tests := []struct {
		name      string
		runs      int
		extra     models.ExtraType
		wantTotal int
		wantOvers string
	}{
		{"dot ball", 0, models.ExtraNone, 0, "0.1"},
		{"boundary", 4, models.ExtraNone, 4, "0.1"},
		{"six", 6, models.ExtraNone, 6, "0.1"},
		{"wide", 0, models.ExtraWide, 1, "0.0"},
		{"wide with two byes run", 2, models.ExtraWide, 3, "0.0"},
		{"no-ball", 0, models.ExtraNoBall, 1, "0.0"},
		{"no-ball hit for four", 4, models.ExtraNoBall, 5, "0.0"},
		{"three byes", 3, models.ExtraBye, 6, "0.1"},
		{"leg-bye", 1, models.ExtraLegBye, 2, "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, _, _ := apply(t, delivery(tt.runs, tt.extra), testInnings(), testOver(), testMatch())
			if out.Innings.TotalRuns != tt.wantTotal {
				t.Errorf("TotalRuns = %d, want %d", out.Innings.TotalRuns, tt.wantTotal)
			}
			if out.Innings.TotalOvers != tt.wantOvers {
				t.Errorf("TotalOvers = %s, want %s", out.Innings.TotalOvers, tt.wantOvers)
			}
		})
	}
}

func TestStrikeRotationParity(t *testing.T) {
	tests := []struct {
		name        string
		runs        int
		extra       models.ExtraType
		wicket      bool
		wantStriker string
	}{
		{"even runs keep strike", 4, models.ExtraNone, false, "s1"},
		{"zero runs keep strike", 0, models.ExtraNone, false, "s1"},
		{"single rotates", 1, models.ExtraNone, false, "s2"},
		{"three rotates", 3, models.ExtraNone, false, "s2"},
		{"odd byes rotate", 1, models.ExtraBye, false, "s2"},
		{"wide never rotates", 1, models.ExtraWide, false, "s1"},
		{"wicket never rotates", 1, models.ExtraNone, true, "s1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := delivery(tt.runs, tt.extra)
			if tt.wicket {
				d.IsWicket = true
				d.WicketKind = models.WicketRunOut
				d.Fielder = "f1"
			}
			out, _, _, _ := apply(t, d, testInnings(), testOver(), testMatch())
			if out.Innings.Striker != tt.wantStriker {
				t.Errorf("Striker = %s, want %s", out.Innings.Striker, tt.wantStriker)
			}
		})
	}
}

func TestOverCompletionRotatesAndRolls(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()

	// first ball: boundary, striker keeps strike
	out, in, ov, m := apply(t, delivery(4, models.ExtraNone), in, ov, m)
	if in.TotalOvers != "0.1" {
		t.Fatalf("overs after first ball = %s, want 0.1", in.TotalOvers)
	}
	if in.Striker != "s1" {
		t.Fatalf("striker rotated on even runs")
	}

	// five more singles; each rotates, sixth ball closes the over
	for i := 0; i < 5; i++ {
		d := delivery(1, models.ExtraNone)
		d.Striker = in.Striker
		d.NonStriker = in.NonStriker
		out, in, ov, m = apply(t, d, in, ov, m)
	}

	if in.TotalOvers != "1.0" {
		t.Errorf("overs = %s, want 1.0", in.TotalOvers)
	}
	if !out.HasSignal(engine.SignalOverComplete) {
		t.Error("over completion signal missing")
	}
	if ov.LegalCount != 6 {
		t.Errorf("over legal count = %d, want 6", ov.LegalCount)
	}
	// sixth single rotates to s2, end-of-over swap compounds back to s1
	if in.Striker != "s1" || in.NonStriker != "s2" {
		t.Errorf("ends after over = %s/%s, want s1/s2", in.Striker, in.NonStriker)
	}
	if in.PreviousOverBowler != "b1" {
		t.Errorf("PreviousOverBowler = %s, want b1", in.PreviousOverBowler)
	}
	if in.CurrentBowler != "" || in.CurrentOverID != "" {
		t.Errorf("current bowler/over not cleared: %s/%s", in.CurrentBowler, in.CurrentOverID)
	}
	_ = m
}

func TestIllegalDeliveriesDoNotAdvanceOver(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()

	for i := 0; i < 5; i++ {
		_, in, ov, m = apply(t, delivery(0, models.ExtraNone), in, ov, m)
	}
	// five legal, then wides must not close the over
	for i := 0; i < 3; i++ {
		_, in, ov, m = apply(t, delivery(0, models.ExtraWide), in, ov, m)
	}
	if in.TotalOvers != "0.5" {
		t.Errorf("overs = %s, want 0.5", in.TotalOvers)
	}
	if ov.LegalCount != 5 {
		t.Errorf("legal count = %d, want 5", ov.LegalCount)
	}
	if in.TotalRuns != 3 {
		t.Errorf("runs = %d, want 3", in.TotalRuns)
	}

	// sixth legal ball closes it
	out, in, _, _ := apply(t, delivery(0, models.ExtraNone), in, ov, m)
	if in.TotalOvers != "1.0" {
		t.Errorf("overs = %s, want 1.0", in.TotalOvers)
	}
	if !out.HasSignal(engine.SignalOverComplete) {
		t.Error("over completion signal missing")
	}
}

func TestBallNumbering(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()

	out, in, ov, m := apply(t, delivery(0, models.ExtraWide), in, ov, m)
	if out.Delivery.BallNumber != 0 {
		t.Errorf("wide before first legal ball numbered %d, want 0", out.Delivery.BallNumber)
	}
	out, in, ov, m = apply(t, delivery(0, models.ExtraNone), in, ov, m)
	if out.Delivery.BallNumber != 1 {
		t.Errorf("first legal ball numbered %d, want 1", out.Delivery.BallNumber)
	}
	out, _, _, _ = apply(t, delivery(0, models.ExtraNoBall), in, ov, m)
	if out.Delivery.BallNumber != 1 {
		t.Errorf("no-ball after one legal ball numbered %d, want 1", out.Delivery.BallNumber)
	}
}

func TestWicketFall(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()
	in.TotalRuns = 30
	in.TotalWickets = 2

	d := delivery(0, models.ExtraNone)
	d.IsWicket = true
	d.WicketKind = models.WicketBowled

	out, in, _, _ := apply(t, d, in, ov, m)

	if in.TotalWickets != 3 {
		t.Errorf("wickets = %d, want 3", in.TotalWickets)
	}
	if !out.HasSignal(engine.SignalWicketFallen) {
		t.Error("wicket signal missing")
	}
	if len(in.FallOfWickets) != 1 {
		t.Fatalf("fall of wickets entries = %d, want 1", len(in.FallOfWickets))
	}
	fow := in.FallOfWickets[0]
	if fow.WicketNumber != 3 {
		t.Errorf("wicket number = %d, want 3", fow.WicketNumber)
	}
	if fow.ScoreAtFall != 30 {
		t.Errorf("score at fall = %d, want 30", fow.ScoreAtFall)
	}
	if fow.PlayerID != "s1" {
		t.Errorf("dismissed = %s, want striker s1", fow.PlayerID)
	}
	if fow.OversAtFall != "0.1" {
		t.Errorf("overs at fall = %s, want 0.1", fow.OversAtFall)
	}
	// striker slot retained pending replacement
	if in.Striker != "s1" {
		t.Errorf("striker slot = %s, want s1 retained", in.Striker)
	}

	var sawBatterNeeded bool
	for _, ev := range out.Events {
		if ev.Type == models.EventNewBatterNeeded {
			sawBatterNeeded = true
		}
	}
	if !sawBatterNeeded {
		t.Error("newBatterNeeded event missing")
	}
}

func TestRunOutDismissesNamedBatter(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()

	d := delivery(1, models.ExtraNone)
	d.IsWicket = true
	d.WicketKind = models.WicketRunOut
	d.DismissedBatter = "s2"
	d.Fielder = "f1"

	out, in, _, _ := apply(t, d, in, ov, m)
	if in.FallOfWickets[0].PlayerID != "s2" {
		t.Errorf("dismissed = %s, want s2", in.FallOfWickets[0].PlayerID)
	}
	if in.FallOfWickets[0].Fielder != "f1" {
		t.Errorf("fielder = %s, want f1", in.FallOfWickets[0].Fielder)
	}
	// run-out does not credit the bowler
	for _, bs := range out.Innings.BowlerStats {
		if bs.PlayerID == "b1" && bs.Wickets != 0 {
			t.Errorf("bowler wickets = %d, want 0 for run-out", bs.Wickets)
		}
	}
}

func TestAllOutCompletesInnings(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()
	in.TotalWickets = 9

	d := delivery(0, models.ExtraNone)
	d.IsWicket = true
	d.WicketKind = models.WicketCaught
	d.Fielder = "f1"

	out, in, _, m := apply(t, d, in, ov, m)
	if !in.Completed {
		t.Fatal("innings not completed at 10 wickets")
	}
	if in.EndReason != models.EndReasonAllOut {
		t.Errorf("end reason = %s, want all_out", in.EndReason)
	}
	if !out.HasSignal(engine.SignalInningsComplete) {
		t.Error("innings completion signal missing")
	}
	if m.Target != in.TotalRuns+1 {
		t.Errorf("target = %d, want %d", m.Target, in.TotalRuns+1)
	}
	if m.CurrentInnings != 2 {
		t.Errorf("current innings = %d, want 2", m.CurrentInnings)
	}

	// innings complete event exactly once, and no newBatterNeeded
	var completeCount, batterNeeded int
	for _, ev := range out.Events {
		switch ev.Type {
		case models.EventInningsComplete:
			completeCount++
		case models.EventNewBatterNeeded:
			batterNeeded++
		}
	}
	if completeCount != 1 {
		t.Errorf("inningsComplete events = %d, want 1", completeCount)
	}
	if batterNeeded != 0 {
		t.Errorf("newBatterNeeded emitted after all out")
	}
}

func TestOversExhaustedCompletesInnings(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()
	m.TotalOvers = 1

	for i := 0; i < 5; i++ {
		_, in, ov, m = apply(t, delivery(0, models.ExtraNone), in, ov, m)
	}
	out, in, _, m := apply(t, delivery(0, models.ExtraNone), in, ov, m)

	if !in.Completed {
		t.Fatal("innings not completed when overs exhausted")
	}
	if in.EndReason != models.EndReasonOversCompleted {
		t.Errorf("end reason = %s, want overs_completed", in.EndReason)
	}
	// no next-over prompt once the innings is done
	for _, ev := range out.Events {
		if ev.Type == models.EventChooseBowler {
			t.Error("chooseBowler emitted after innings completion")
		}
	}
	if out.NextOver != nil {
		t.Error("next over auto-created after innings completion")
	}
}

func TestCompletedInningsRejectsDelivery(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()
	in.Completed = true

	_, err := engine.ProcessDelivery(delivery(1, models.ExtraNone), in, ov, m)
	if !errors.Is(err, engine.ErrInningsCompleted) {
		t.Fatalf("err = %v, want ErrInningsCompleted", err)
	}
	// inputs must be untouched
	if in.TotalRuns != 0 || in.TotalOvers != "0.0" {
		t.Error("state mutated on precondition violation")
	}
}

func TestPreconditionErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Delivery, *models.Innings, *models.Over)
		wantErr error
	}{
		{"nil-safe over mismatch", func(d *models.Delivery, in *models.Innings, ov *models.Over) { d.OverID = "other" }, engine.ErrOverMismatch},
		{"wrong bowler", func(d *models.Delivery, in *models.Innings, ov *models.Over) { d.Bowler = "b9" }, engine.ErrOverMismatch},
		{"full over", func(d *models.Delivery, in *models.Innings, ov *models.Over) { ov.LegalCount = 6 }, engine.ErrOverComplete},
		{"bad extra", func(d *models.Delivery, in *models.Innings, ov *models.Over) { d.Extra = "golden-duck" }, engine.ErrInvalidExtraType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, in, ov, m := delivery(0, models.ExtraNone), testInnings(), testOver(), testMatch()
			tt.mutate(&d, in, ov)
			_, err := engine.ProcessDelivery(d, in, ov, m)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventOrdering(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()
	out, _, _, _ := apply(t, delivery(4, models.ExtraNone), in, ov, m)

	want := []models.EventType{
		models.EventLiveScoreUpdate,
		models.EventBallAdded,
		models.EventNewCommentary,
	}
	if len(out.Events) != len(want) {
		t.Fatalf("events = %d, want %d", len(out.Events), len(want))
	}
	for i, ev := range out.Events {
		if ev.Type != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, ev.Type, want[i])
		}
	}
}

func TestBatterAndBowlerStats(t *testing.T) {
	in, ov, m := testInnings(), testOver(), testMatch()

	_, in, ov, m = apply(t, delivery(4, models.ExtraNone), in, ov, m)
	_, in, ov, m = apply(t, delivery(6, models.ExtraNone), in, ov, m)
	_, in, ov, m = apply(t, delivery(0, models.ExtraWide), in, ov, m)
	_, in, ov, m = apply(t, delivery(2, models.ExtraBye), in, ov, m)

	var bat *models.BatterStats
	for i := range in.BatterStats {
		if in.BatterStats[i].PlayerID == "s1" {
			bat = &in.BatterStats[i]
		}
	}
	if bat == nil {
		t.Fatal("no stats row for striker")
	}
	if bat.Runs != 10 {
		t.Errorf("batter runs = %d, want 10", bat.Runs)
	}
	if bat.Balls != 3 {
		t.Errorf("balls faced = %d, want 3 (wide excluded, bye included)", bat.Balls)
	}
	if bat.Fours != 1 || bat.Sixes != 1 {
		t.Errorf("fours/sixes = %d/%d, want 1/1", bat.Fours, bat.Sixes)
	}
	if want := float64(10) * 100 / 3; bat.StrikeRate != want {
		t.Errorf("strike rate = %f, want %f", bat.StrikeRate, want)
	}

	var bowl *models.BowlerStats
	for i := range in.BowlerStats {
		if in.BowlerStats[i].PlayerID == "b1" {
			bowl = &in.BowlerStats[i]
		}
	}
	if bowl == nil {
		t.Fatal("no stats row for bowler")
	}
	// 4 + 6 off the bat + 1 wide; byes not charged
	if bowl.Runs != 11 {
		t.Errorf("conceded = %d, want 11", bowl.Runs)
	}
	if bowl.LegalBalls != 3 {
		t.Errorf("legal balls = %d, want 3", bowl.LegalBalls)
	}
	if bowl.Overs != "0.3" {
		t.Errorf("bowler overs = %s, want 0.3", bowl.Overs)
	}
	if want := float64(11) * 6 / 3; bowl.Economy != want {
		t.Errorf("economy = %f, want %f", bowl.Economy, want)
	}
}

func TestFullOverScenario(t *testing.T) {
	// innings at 0/0, overs 0.0: a boundary then five singles reaches
	// 1.0 with over-complete fired and strike swapped
	in, ov, m := testInnings(), testOver(), testMatch()

	out, in, ov, m := apply(t, delivery(4, models.ExtraNone), in, ov, m)
	if in.TotalRuns != 4 || in.TotalWickets != 0 || in.TotalOvers != "0.1" {
		t.Fatalf("after boundary: %d/%d overs %s", in.TotalRuns, in.TotalWickets, in.TotalOvers)
	}
	if in.Striker != "s1" {
		t.Fatal("striker changed on even runs")
	}

	for i := 0; i < 5; i++ {
		d := delivery(1, models.ExtraNone)
		d.Striker = in.Striker
		d.NonStriker = in.NonStriker
		out, in, ov, m = apply(t, d, in, ov, m)
	}
	if in.TotalOvers != "1.0" {
		t.Errorf("overs = %s, want 1.0", in.TotalOvers)
	}
	if in.TotalRuns != 9 {
		t.Errorf("runs = %d, want 9", in.TotalRuns)
	}
	if !out.HasSignal(engine.SignalOverComplete) {
		t.Error("over completion missing")
	}
}
