package workout

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/skillpoint"
)

// DirectionSignal aggregates normalized pressure values over all candidate
// cards of one direction. Every field is in [0,1].
type DirectionSignal struct {
	DuePressure      float64
	FailPressure     float64
	NewPressure      float64
	UnstablePressure float64
	MomentumPressure float64
	AvgPriority      float64
	NeglectPressure  float64
}

func (s DirectionSignal) quizBias() float64 {
	return clampUnit(0.45*s.DuePressure +
		0.25*s.NewPressure +
		0.15*s.UnstablePressure +
		0.15*s.NeglectPressure)
}

func (s DirectionSignal) applyBias() float64 {
	return clampUnit(0.35*s.MomentumPressure +
		0.25*s.AvgPriority +
		0.2*s.NewPressure +
		0.1*s.NeglectPressure +
		0.2*math.Max(1.0-s.FailPressure, 0))
}

func (s DirectionSignal) reviewBias() float64 {
	return clampUnit(0.55*s.FailPressure +
		0.2*s.UnstablePressure +
		0.15*s.DuePressure +
		0.1*s.NeglectPressure)
}

func (s DirectionSignal) forPhase(phase Phase) float64 {
	switch phase {
	case PhaseQuiz:
		return s.quizBias()
	case PhaseApply:
		return s.applyBias()
	default:
		return s.reviewBias()
	}
}

func (s DirectionSignal) compositeBias() float64 {
	return clampUnit(0.3*s.DuePressure +
		0.3*s.FailPressure +
		0.2*s.AvgPriority +
		0.15*s.MomentumPressure +
		0.05*s.NeglectPressure)
}

// SkillSignal aggregates normalized pressures over all candidate cards
// tagged with one skill point, plus the skill's mastery level gap.
type SkillSignal struct {
	Level            skillpoint.Level
	DuePressure      float64
	FailPressure     float64
	NewPressure      float64
	UnstablePressure float64
	MomentumPressure float64
	NeglectPressure  float64
	AvgPriority      float64
	Count            int
}

func (s SkillSignal) levelGap() float64 {
	if s.Level == "" {
		return skillpoint.LevelUnknown.Gap()
	}
	return s.Level.Gap()
}

func (s SkillSignal) quizBias() float64 {
	return clampUnit(0.4*s.levelGap() +
		0.25*s.DuePressure +
		0.2*s.NewPressure +
		0.1*s.NeglectPressure +
		0.05*s.AvgPriority)
}

func (s SkillSignal) applyBias() float64 {
	return clampUnit(0.4*s.levelGap() +
		0.2*s.NewPressure +
		0.15*math.Max(1.0-s.FailPressure, 0) +
		0.15*s.MomentumPressure +
		0.1*s.AvgPriority +
		0.1*math.Max(1.0-s.NeglectPressure, 0))
}

func (s SkillSignal) reviewBias() float64 {
	return clampUnit(0.45*s.levelGap() +
		0.3*s.FailPressure +
		0.15*s.UnstablePressure +
		0.1*s.NeglectPressure)
}

func (s SkillSignal) forPhase(phase Phase) float64 {
	switch phase {
	case PhaseQuiz:
		return s.quizBias()
	case PhaseApply:
		return s.applyBias()
	default:
		return s.reviewBias()
	}
}

// growthPressure estimates how much a skill would profit from dedicated
// practice: dominated by the mastery gap, then failures and neglect.
func (s SkillSignal) growthPressure() float64 {
	return clampUnit(0.5*s.levelGap() +
		0.2*s.FailPressure +
		0.2*s.NeglectPressure +
		0.1*s.NewPressure)
}

func (s SkillSignal) share(total int) float64 {
	if total == 0 {
		return 0
	}
	return clampUnit(float64(s.Count) / float64(total))
}

type signalAccumulator struct {
	count    int
	due      float64
	fail     float64
	newCards float64
	unstable float64
	momentum float64
	priority float64
	stale    float64
}

func (a *signalAccumulator) add(c *card.MemoryCard, stats *card.ReviewStats, now time.Time, withFailRecency bool) {
	a.count++
	a.due += dueUrgency(c, now)
	a.unstable += clampUnit(1.0 - c.Stability)
	a.priority += clampUnit(c.Priority)

	if stats == nil {
		a.newCards++
		a.stale++
		return
	}
	if stats.TotalReviews() == 0 {
		a.newCards++
	}
	fail := 0.6*stats.FailRate() + 0.2*clampUnit(float64(stats.ConsecutiveFails)/3.0)
	if withFailRecency {
		fail += 0.2 * lastFailPressure(stats, now)
	}
	a.fail += fail
	a.momentum += clampUnit(float64(stats.ConsecutivePasses) / 4.0)
	a.stale += stalenessFromStats(stats, now)
}

func (a *signalAccumulator) normalize(value float64) float64 {
	if a.count == 0 {
		return 0
	}
	return clampUnit(value / float64(a.count))
}

// analyzeDirectionSignals derives per-direction pressures from the candidate
// pool. Directions with no candidates simply have no entry (zero signal).
func analyzeDirectionSignals(cards []card.MemoryCard, stats map[uuid.UUID]card.ReviewStats, now time.Time) map[uuid.UUID]DirectionSignal {
	accs := make(map[uuid.UUID]*signalAccumulator)
	for i := range cards {
		c := &cards[i]
		acc := accs[c.DirectionID]
		if acc == nil {
			acc = &signalAccumulator{}
			accs[c.DirectionID] = acc
		}
		acc.add(c, statsFor(stats, c.ID), now, true)
	}

	signals := make(map[uuid.UUID]DirectionSignal, len(accs))
	for directionID, acc := range accs {
		signals[directionID] = DirectionSignal{
			DuePressure:      acc.normalize(acc.due),
			FailPressure:     acc.normalize(acc.fail),
			NewPressure:      acc.normalize(acc.newCards),
			UnstablePressure: acc.normalize(acc.unstable),
			MomentumPressure: acc.normalize(acc.momentum),
			AvgPriority:      acc.normalize(acc.priority),
			NeglectPressure:  acc.normalize(acc.stale),
		}
	}
	return signals
}

// analyzeSkillSignals derives per-skill pressures; cards without a skill
// point are skipped.
func analyzeSkillSignals(cards []card.MemoryCard, stats map[uuid.UUID]card.ReviewStats, now time.Time, skills map[uuid.UUID]SkillDescriptor) map[uuid.UUID]SkillSignal {
	accs := make(map[uuid.UUID]*signalAccumulator)
	for i := range cards {
		c := &cards[i]
		if c.SkillPointID == nil {
			continue
		}
		acc := accs[*c.SkillPointID]
		if acc == nil {
			acc = &signalAccumulator{}
			accs[*c.SkillPointID] = acc
		}
		acc.add(c, statsFor(stats, c.ID), now, false)
	}

	signals := make(map[uuid.UUID]SkillSignal, len(accs))
	for skillID, acc := range accs {
		signals[skillID] = SkillSignal{
			Level:            skillDescriptor(skills, skillID).Level,
			DuePressure:      acc.normalize(acc.due),
			FailPressure:     acc.normalize(acc.fail),
			NewPressure:      acc.normalize(acc.newCards),
			UnstablePressure: acc.normalize(acc.unstable),
			MomentumPressure: acc.normalize(acc.momentum),
			NeglectPressure:  acc.normalize(acc.stale),
			AvgPriority:      acc.normalize(acc.priority),
			Count:            acc.count,
		}
	}
	return signals
}

func statsFor(stats map[uuid.UUID]card.ReviewStats, cardID uuid.UUID) *card.ReviewStats {
	if entry, ok := stats[cardID]; ok {
		return &entry
	}
	return nil
}

func skillDescriptor(skills map[uuid.UUID]SkillDescriptor, skillID uuid.UUID) SkillDescriptor {
	if descriptor, ok := skills[skillID]; ok {
		return descriptor
	}
	return SkillDescriptor{Name: "unassigned skill", Level: skillpoint.LevelUnknown}
}

func directionDescriptor(directions map[uuid.UUID]DirectionDescriptor, directionID uuid.UUID) DirectionDescriptor {
	if descriptor, ok := directions[directionID]; ok {
		return descriptor
	}
	return DirectionDescriptor{Name: "unassigned direction", Stage: "explore"}
}

// dueUrgency maps a card's due date to [0,1]: ramps up over the 24h before
// the due moment and keeps climbing for 24h after it. Cards without a due
// date get a neutral 0.3.
func dueUrgency(c *card.MemoryCard, now time.Time) float64 {
	if c.NextDue == nil {
		return 0.3
	}
	delta := now.Sub(*c.NextDue).Minutes()
	return clampUnit((delta + 24*60) / (48 * 60))
}

// freshnessScore grows with time since the card was last seen (7-day window),
// boosted after a fail streak and dampened after a long pass streak.
func freshnessScore(stats *card.ReviewStats, now time.Time) float64 {
	base := 1.0
	if stats.LastSeen != nil {
		minutes := now.Sub(*stats.LastSeen).Minutes()
		if minutes <= 0 {
			base = 0
		} else {
			base = clampUnit(minutes / (7 * 24 * 60))
		}
	}

	if stats.ConsecutiveFails > 0 {
		return clampUnit(base + 0.2)
	}
	if stats.ConsecutivePasses >= 3 {
		return clampUnit(base * 0.7)
	}
	return base
}

// stalenessFromStats is the neglect measure: 0 for just-practiced, 1 at five
// days without practice. Never-practiced cards are maximally neglected.
func stalenessFromStats(stats *card.ReviewStats, now time.Time) float64 {
	if stats == nil {
		return 1.0
	}
	return stalenessFromLastSeen(stats.LastSeen, now)
}

func stalenessFromLastSeen(lastSeen *time.Time, now time.Time) float64 {
	if lastSeen == nil {
		return 1.0
	}
	minutes := now.Sub(*lastSeen).Minutes()
	if minutes <= 0 {
		return 0
	}
	return clampUnit(minutes / (5 * 24 * 60))
}

// lastFailPressure decays linearly from 1 to 0 over 72h after the last fail.
func lastFailPressure(stats *card.ReviewStats, now time.Time) float64 {
	if stats == nil || stats.LastFailAt == nil {
		return 0
	}
	minutes := now.Sub(*stats.LastFailAt).Minutes()
	return clampUnit(1.0 - minutes/(72*60))
}

// clampUnit clamps to [0,1]; non-finite inputs map to 0.
func clampUnit(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
