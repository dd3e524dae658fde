package workout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/direction"
)

func TestStageBiasForStage(t *testing.T) {
	cases := []struct {
		stage  direction.Stage
		quiz   float64
		apply  float64
		review float64
	}{
		{direction.StageExplore, 0.08, 0.04, 0.02},
		{direction.StageShape, 0.05, 0.07, 0.04},
		{direction.StageAttack, 0.02, 0.1, 0.05},
		{direction.StageStabilize, 0.03, 0.05, 0.1},
	}
	for _, tc := range cases {
		bias := stageBiasForStage(tc.stage)
		if bias.quiz != tc.quiz || bias.apply != tc.apply || bias.review != tc.review {
			t.Errorf("stageBiasForStage(%s) = %+v, want (%v,%v,%v)", tc.stage, bias, tc.quiz, tc.apply, tc.review)
		}
	}
}

func TestStageBiasForUnknownDirectionDefaultsToExplore(t *testing.T) {
	bias := stageBiasFor(nil, uuid.New())
	if bias != stageBiasForStage(direction.StageExplore) {
		t.Errorf("unknown direction should use explore bias, got %+v", bias)
	}
}

func TestComputeSegmentScoresStayInUnitRange(t *testing.T) {
	now := time.Now().UTC()
	overdue := now.Add(-48 * time.Hour)
	c := &card.MemoryCard{
		ID:          uuid.New(),
		DirectionID: uuid.New(),
		Stability:   0.05,
		Relevance:   0.95,
		Novelty:     0.9,
		Priority:    0.9,
		NextDue:     &overdue,
	}
	stats := &card.ReviewStats{FailCount: 4, ConsecutiveFails: 3}

	scores := computeSegmentScores(c, stats, now, nil, nil, nil)
	for phase, value := range map[string]float64{
		"quiz":      scores.quiz,
		"apply":     scores.apply,
		"review":    scores.review,
		"composite": scores.composite,
	} {
		if value < 0 || value > 1 {
			t.Errorf("%s score %v outside [0,1]", phase, value)
		}
	}
}

func TestComputeSegmentScoresFailureRaisesReview(t *testing.T) {
	now := time.Now().UTC()
	directionID := uuid.New()

	troubled := &card.MemoryCard{ID: uuid.New(), DirectionID: directionID, Stability: 0.3, Relevance: 0.5, Novelty: 0.5, Priority: 0.6}
	lastFail := now.Add(-2 * time.Hour)
	troubledStats := &card.ReviewStats{
		LastSeen:         &lastFail,
		LastFailAt:       &lastFail,
		FailCount:        3,
		PassCount:        1,
		ConsecutiveFails: 2,
	}

	smooth := &card.MemoryCard{ID: uuid.New(), DirectionID: directionID, Stability: 0.3, Relevance: 0.5, Novelty: 0.5, Priority: 0.6}
	lastPass := now.Add(-2 * time.Hour)
	smoothStats := &card.ReviewStats{
		LastSeen:          &lastPass,
		LastPassAt:        &lastPass,
		PassCount:         4,
		ConsecutivePasses: 4,
	}

	troubledScores := computeSegmentScores(troubled, troubledStats, now, nil, nil, nil)
	smoothScores := computeSegmentScores(smooth, smoothStats, now, nil, nil, nil)

	if troubledScores.review <= smoothScores.review {
		t.Errorf("failing card review score %v should exceed passing card's %v",
			troubledScores.review, smoothScores.review)
	}
	if smoothScores.apply <= troubledScores.apply {
		t.Errorf("passing card apply score %v should exceed failing card's %v",
			smoothScores.apply, troubledScores.apply)
	}
}

func TestSegmentScoresForPhase(t *testing.T) {
	scores := segmentScores{quiz: 0.1, apply: 0.2, review: 0.3}
	if scores.forPhase(PhaseQuiz) != 0.1 || scores.forPhase(PhaseApply) != 0.2 || scores.forPhase(PhaseReview) != 0.3 {
		t.Error("forPhase did not route to the matching score")
	}
}
