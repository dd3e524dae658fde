package workout

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/skillpoint"
)

func TestClampUnit(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tc := range cases {
		if got := clampUnit(tc.in); got != tc.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDueUrgency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	c := &card.MemoryCard{}
	if got := dueUrgency(c, now); got != 0.3 {
		t.Errorf("no due date: got %v, want 0.3", got)
	}

	due := now
	c.NextDue = &due
	if got := dueUrgency(c, now); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("due right now: got %v, want 0.5", got)
	}

	overdue := now.Add(-24 * time.Hour)
	c.NextDue = &overdue
	if got := dueUrgency(c, now); got != 1.0 {
		t.Errorf("24h overdue: got %v, want 1.0", got)
	}

	future := now.Add(48 * time.Hour)
	c.NextDue = &future
	if got := dueUrgency(c, now); got != 0 {
		t.Errorf("due in 48h: got %v, want 0", got)
	}
}

func TestStalenessFromStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := stalenessFromStats(nil, now); got != 1.0 {
		t.Errorf("never practiced: got %v, want 1.0", got)
	}

	seen := now
	if got := stalenessFromStats(&card.ReviewStats{LastSeen: &seen}, now); got != 0 {
		t.Errorf("just practiced: got %v, want 0", got)
	}

	halfway := now.Add(-60 * time.Hour) // 2.5 of 5 days
	if got := stalenessFromStats(&card.ReviewStats{LastSeen: &halfway}, now); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("2.5 days ago: got %v, want 0.5", got)
	}

	long := now.Add(-10 * 24 * time.Hour)
	if got := stalenessFromStats(&card.ReviewStats{LastSeen: &long}, now); got != 1.0 {
		t.Errorf("10 days ago: got %v, want 1.0", got)
	}
}

func TestFreshnessScore(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := freshnessScore(&card.ReviewStats{}, now); got != 1.0 {
		t.Errorf("never seen: got %v, want 1.0", got)
	}

	seen := now.Add(-7 * 24 * time.Hour)
	if got := freshnessScore(&card.ReviewStats{LastSeen: &seen}, now); got != 1.0 {
		t.Errorf("seen a week ago: got %v, want 1.0", got)
	}

	recent := now.Add(-time.Hour)
	base := freshnessScore(&card.ReviewStats{LastSeen: &recent}, now)
	boosted := freshnessScore(&card.ReviewStats{LastSeen: &recent, ConsecutiveFails: 1}, now)
	if math.Abs(boosted-(base+0.2)) > 1e-9 {
		t.Errorf("fail streak boost: got %v, want %v", boosted, base+0.2)
	}

	streaky := freshnessScore(&card.ReviewStats{LastSeen: &seen, ConsecutivePasses: 3}, now)
	if math.Abs(streaky-0.7) > 1e-9 {
		t.Errorf("pass streak damping: got %v, want 0.7", streaky)
	}
}

func TestAnalyzeDirectionSignalsAllNewCards(t *testing.T) {
	now := time.Now().UTC()
	directionID := uuid.New()
	cards := []card.MemoryCard{
		{ID: uuid.New(), DirectionID: directionID, Stability: 0.1, Priority: 0.8},
		{ID: uuid.New(), DirectionID: directionID, Stability: 0.1, Priority: 0.8},
	}

	signals := analyzeDirectionSignals(cards, nil, now)
	signal, ok := signals[directionID]
	if !ok {
		t.Fatal("expected a signal for the direction")
	}
	if signal.NewPressure != 1.0 {
		t.Errorf("NewPressure = %v, want 1.0", signal.NewPressure)
	}
	if signal.NeglectPressure != 1.0 {
		t.Errorf("NeglectPressure = %v, want 1.0", signal.NeglectPressure)
	}
	if signal.FailPressure != 0 {
		t.Errorf("FailPressure = %v, want 0", signal.FailPressure)
	}
	if math.Abs(signal.UnstablePressure-0.9) > 1e-9 {
		t.Errorf("UnstablePressure = %v, want 0.9", signal.UnstablePressure)
	}
}

func TestAnalyzeSkillSignalsSkipsUntaggedCards(t *testing.T) {
	now := time.Now().UTC()
	skillID := uuid.New()
	tagged := card.MemoryCard{ID: uuid.New(), DirectionID: uuid.New(), SkillPointID: &skillID}
	untagged := card.MemoryCard{ID: uuid.New(), DirectionID: uuid.New()}

	signals := analyzeSkillSignals([]card.MemoryCard{tagged, untagged}, nil, now, map[uuid.UUID]SkillDescriptor{
		skillID: {Name: "Consensus", Level: skillpoint.LevelEmerging},
	})

	if len(signals) != 1 {
		t.Fatalf("expected one skill signal, got %d", len(signals))
	}
	signal := signals[skillID]
	if signal.Count != 1 {
		t.Errorf("Count = %d, want 1", signal.Count)
	}
	if signal.Level != skillpoint.LevelEmerging {
		t.Errorf("Level = %q, want emerging", signal.Level)
	}
	if got := signal.levelGap(); got != 0.75 {
		t.Errorf("levelGap() = %v, want 0.75", got)
	}
}

func TestSkillSignalShare(t *testing.T) {
	signal := SkillSignal{Count: 3}
	if got := signal.share(0); got != 0 {
		t.Errorf("share(0) = %v, want 0", got)
	}
	if got := signal.share(6); got != 0.5 {
		t.Errorf("share(6) = %v, want 0.5", got)
	}
}
