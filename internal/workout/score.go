package workout

import (
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/direction"
)

// stageBias skews segment scores toward the phase a direction's stage favors:
// exploring directions lean on quizzes, attacking ones on application, and
// stabilizing ones on review.
type stageBias struct {
	quiz   float64
	apply  float64
	review float64
}

func stageBiasFor(directions map[uuid.UUID]DirectionDescriptor, directionID uuid.UUID) stageBias {
	stage := direction.StageExplore
	if descriptor, ok := directions[directionID]; ok {
		stage = descriptor.Stage
	}
	return stageBiasForStage(stage)
}

func stageBiasForStage(stage direction.Stage) stageBias {
	switch stage {
	case direction.StageShape:
		return stageBias{quiz: 0.05, apply: 0.07, review: 0.04}
	case direction.StageAttack:
		return stageBias{quiz: 0.02, apply: 0.1, review: 0.05}
	case direction.StageStabilize:
		return stageBias{quiz: 0.03, apply: 0.05, review: 0.1}
	default:
		return stageBias{quiz: 0.08, apply: 0.04, review: 0.02}
	}
}

type segmentScores struct {
	quiz      float64
	apply     float64
	review    float64
	composite float64
}

func (s segmentScores) forPhase(phase Phase) float64 {
	switch phase {
	case PhaseQuiz:
		return s.quiz
	case PhaseApply:
		return s.apply
	default:
		return s.review
	}
}

func computeSegmentScores(
	c *card.MemoryCard,
	stats *card.ReviewStats,
	now time.Time,
	directions map[uuid.UUID]DirectionDescriptor,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) segmentScores {
	if stats == nil {
		stats = &card.ReviewStats{}
	}

	priority := clampUnit(c.Priority)
	relevance := clampUnit(c.Relevance)
	novelty := clampUnit(c.Novelty)
	stabilityGap := clampUnit(1.0 - c.Stability)
	due := dueUrgency(c, now)
	freshness := freshnessScore(stats, now)
	failRate := stats.FailRate()
	passMomentum := clampUnit(float64(stats.ConsecutivePasses) / 4.0)
	failStreak := clampUnit(float64(stats.ConsecutiveFails) / 3.0)
	newBonus := 0.0
	if stats.TotalReviews() == 0 {
		newBonus = 1.0
	}
	failPressure := lastFailPressure(stats, now)
	bias := stageBiasFor(directions, c.DirectionID)
	directionSignal := directionSignals[c.DirectionID]
	var skillSignal SkillSignal
	if c.SkillPointID != nil {
		skillSignal = skillSignals[*c.SkillPointID]
	}

	quiz := clampUnit(0.3*due +
		0.25*stabilityGap +
		0.15*priority +
		0.15*passMomentum +
		0.1*(1.0-failRate) +
		0.05*novelty +
		0.05*newBonus +
		bias.quiz +
		0.08*directionSignal.quizBias() +
		0.08*skillSignal.quizBias() +
		0.05*skillSignal.levelGap())

	apply := clampUnit(0.4*relevance +
		0.2*novelty +
		0.15*priority +
		0.15*passMomentum +
		0.1*freshness -
		0.1*failRate +
		bias.apply +
		0.1*directionSignal.applyBias() +
		0.1*skillSignal.applyBias() +
		0.05*skillSignal.levelGap())

	review := clampUnit(0.35*failRate +
		0.25*failStreak +
		0.2*due +
		0.1*failPressure +
		0.1*stabilityGap +
		bias.review +
		0.12*directionSignal.reviewBias() +
		0.1*skillSignal.reviewBias() +
		0.04*skillSignal.levelGap())

	composite := clampUnit(0.35*priority +
		0.25*due +
		0.15*relevance +
		0.1*failStreak +
		0.1*passMomentum +
		0.05*novelty +
		0.1*bias.apply +
		0.05*bias.review +
		0.05*bias.quiz +
		0.1*directionSignal.compositeBias() +
		0.08*skillSignal.growthPressure() +
		0.05*skillSignal.levelGap())

	return segmentScores{quiz: quiz, apply: apply, review: review, composite: composite}
}
