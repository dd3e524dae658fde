package workout

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/skillpoint"
)

// Memory-update constants. A pass nudges stability up and pushes the card
// out by roughly a day; a fail halves stability and brings it back within
// hours. Relevant cards come back sooner in both cases.
const (
	passStabilityBoost    = 0.15
	failStabilityPenalty  = 0.5
	passBaseIntervalHours = 24.0
	failBaseIntervalHours = 6.0
)

type cardUpdateOutcome struct {
	progress          CardProgress
	nextDue           *time.Time
	novelty           float64
	previousStability float64
	stabilityDelta    float64
	directionID       uuid.UUID
	skillPointID      *uuid.UUID
}

// applyResult mutates the card for one pass/fail outcome and reports the
// deltas the analytics need.
func applyResult(c *card.MemoryCard, result card.ReviewResult, now time.Time) cardUpdateOutcome {
	previousStability := clampUnit(c.Stability)
	stability := previousStability
	relevance := clampUnit(c.Relevance)
	novelty := clampUnit(c.Novelty)

	var hours float64
	switch result {
	case card.ReviewPass:
		stability = math.Min(stability+passStabilityBoost, 0.99)
		hours = passBaseIntervalHours * (1.0 + stability) * math.Max(1.0-0.5*relevance, 0.3)
	default:
		stability = math.Max(stability*failStabilityPenalty, 0.05)
		hours = failBaseIntervalHours * math.Max(1.0-0.5*relevance, 0.25)
	}
	due := now.Add(time.Duration(math.Round(hours*60)) * time.Minute)

	priority := card.CalculatePriority(stability, relevance, novelty)

	c.Stability = stability
	c.Priority = priority
	c.NextDue = &due
	c.UpdatedAt = now

	return cardUpdateOutcome{
		progress: CardProgress{
			CardID:    c.ID,
			Result:    result,
			Stability: stability,
			Priority:  priority,
			NextDue:   &due,
		},
		nextDue:           &due,
		novelty:           novelty,
		previousStability: previousStability,
		stabilityDelta:    stability - previousStability,
		directionID:       c.DirectionID,
		skillPointID:      c.SkillPointID,
	}
}

type completionAggregate struct {
	total             int
	passCount         int
	failCount         int
	kvDelta           float64
	uncertaintyBefore float64
	uncertaintyDelta  float64
	prioritySum       float64
}

func (a *completionAggregate) record(outcome cardUpdateOutcome, kvContribution float64, pass bool) {
	a.total++
	a.prioritySum += outcome.progress.Priority
	a.uncertaintyBefore += math.Max(1.0-outcome.previousStability, 0)
	a.uncertaintyDelta += outcome.stabilityDelta
	a.kvDelta += kvContribution
	if pass {
		a.passCount++
	} else {
		a.failCount++
	}
}

func (a *completionAggregate) passRate() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.passCount) / float64(a.total)
}

func (a *completionAggregate) avgPriority() float64 {
	if a.total == 0 {
		return 0
	}
	return a.prioritySum / float64(a.total)
}

// completionSession accumulates per-item outcomes into the session-level
// metrics: pass/fail counts, knowledge velocity, uncertainty drop rate, and
// per-direction / per-skill aggregates.
type completionSession struct {
	progress          []CardProgress
	passCount         int
	failCount         int
	kvDelta           float64
	uncertaintyBefore float64
	uncertaintyDelta  float64

	titles            map[uuid.UUID]string
	failCandidates    []scoredCard
	noveltyCandidates []scoredCard

	directionAggregates map[uuid.UUID]*completionAggregate
	directionOrder      []uuid.UUID
	skillAggregates     map[uuid.UUID]*completionAggregate
	skillOrder          []uuid.UUID
}

func newCompletionSession() *completionSession {
	return &completionSession{
		titles:              make(map[uuid.UUID]string),
		directionAggregates: make(map[uuid.UUID]*completionAggregate),
		skillAggregates:     make(map[uuid.UUID]*completionAggregate),
	}
}

func (s *completionSession) record(outcome cardUpdateOutcome, title string) {
	s.titles[outcome.progress.CardID] = title
	s.progress = append(s.progress, outcome.progress)

	s.uncertaintyBefore += math.Max(1.0-outcome.previousStability, 0)
	s.uncertaintyDelta += outcome.stabilityDelta

	var kvContribution float64
	pass := outcome.progress.Result == card.ReviewPass
	if pass {
		s.passCount++
		s.noveltyCandidates = append(s.noveltyCandidates, scoredCard{id: outcome.progress.CardID, score: outcome.novelty})
		kvContribution = 0.08 * math.Max(outcome.progress.Priority, 0)
	} else {
		s.failCount++
		s.failCandidates = append(s.failCandidates, scoredCard{id: outcome.progress.CardID, score: outcome.progress.Priority})
		kvContribution = -0.06 * math.Max(1.0-outcome.progress.Priority, 0)
	}
	s.kvDelta += kvContribution

	directionEntry := s.directionAggregates[outcome.directionID]
	if directionEntry == nil {
		directionEntry = &completionAggregate{}
		s.directionAggregates[outcome.directionID] = directionEntry
		s.directionOrder = append(s.directionOrder, outcome.directionID)
	}
	directionEntry.record(outcome, kvContribution, pass)

	if outcome.skillPointID != nil {
		skillID := *outcome.skillPointID
		skillEntry := s.skillAggregates[skillID]
		if skillEntry == nil {
			skillEntry = &completionAggregate{}
			s.skillAggregates[skillID] = skillEntry
			s.skillOrder = append(s.skillOrder, skillID)
		}
		skillEntry.record(outcome, kvContribution, pass)
	}
}

// uncertaintyDropRate normalizes a stability gain against the uncertainty
// that was there before; tiny denominators fall back to a per-item average.
func uncertaintyDropRate(delta, before float64, total int) float64 {
	var udr float64
	switch {
	case before > 1e-6:
		udr = delta / before
	case total > 0:
		udr = delta / float64(total)
	}
	if udr > 1 {
		return 1
	}
	if udr < -1 {
		return -1
	}
	return udr
}

func (s *completionSession) metrics(
	directions map[uuid.UUID]DirectionDescriptor,
	skills map[uuid.UUID]SkillDescriptor,
) SummaryMetrics {
	totalItems := len(s.progress)

	passRate := 0.0
	if totalItems > 0 {
		passRate = float64(s.passCount) / float64(totalItems)
	}

	kvDelta := s.kvDelta
	if kvDelta > 1.5 {
		kvDelta = 1.5
	} else if kvDelta < -1.5 {
		kvDelta = -1.5
	}

	udr := uncertaintyDropRate(s.uncertaintyDelta, s.uncertaintyBefore, totalItems)

	directionBreakdown := make([]SummaryDirectionBreakdown, 0, len(s.directionOrder))
	for _, directionID := range s.directionOrder {
		data := s.directionAggregates[directionID]
		descriptor := directionDescriptor(directions, directionID)
		share := 0.0
		if totalItems > 0 {
			share = float64(data.total) / float64(totalItems)
		}
		directionBreakdown = append(directionBreakdown, SummaryDirectionBreakdown{
			DirectionID: directionID,
			Name:        descriptor.Name,
			Stage:       descriptor.Stage,
			Total:       data.total,
			PassCount:   data.passCount,
			FailCount:   data.failCount,
			PassRate:    data.passRate(),
			KvDelta:     data.kvDelta,
			Udr:         uncertaintyDropRate(data.uncertaintyDelta, data.uncertaintyBefore, data.total),
			AvgPriority: data.avgPriority(),
			Share:       share,
		})
	}
	sort.SliceStable(directionBreakdown, func(i, j int) bool {
		return directionBreakdown[i].Share > directionBreakdown[j].Share
	})

	skillBreakdown := make([]SummarySkillBreakdown, 0, len(s.skillOrder))
	for _, skillID := range s.skillOrder {
		data := s.skillAggregates[skillID]
		descriptor := skillDescriptor(skills, skillID)
		share := 0.0
		if totalItems > 0 {
			share = float64(data.total) / float64(totalItems)
		}
		skillBreakdown = append(skillBreakdown, SummarySkillBreakdown{
			SkillPointID: skillID,
			Name:         descriptor.Name,
			Level:        descriptor.Level,
			Total:        data.total,
			PassCount:    data.passCount,
			FailCount:    data.failCount,
			PassRate:     data.passRate(),
			KvDelta:      data.kvDelta,
			Udr:          uncertaintyDropRate(data.uncertaintyDelta, data.uncertaintyBefore, data.total),
			AvgPriority:  data.avgPriority(),
			Share:        share,
		})
	}
	sort.SliceStable(skillBreakdown, func(i, j int) bool {
		return skillBreakdown[i].Share > skillBreakdown[j].Share
	})

	return SummaryMetrics{
		TotalItems:         totalItems,
		PassCount:          s.passCount,
		FailCount:          s.failCount,
		PassRate:           passRate,
		KvDelta:            kvDelta,
		Udr:                udr,
		DirectionBreakdown: directionBreakdown,
		SkillBreakdown:     skillBreakdown,
	}
}

// cardRecommendation prefers the highest-priority failed card, then the
// highest-novelty passed card. Empty string when neither exists.
func (s *completionSession) cardRecommendation() string {
	if entry, ok := maxScored(s.failCandidates); ok {
		title := s.titleFor(entry.id)
		return fmt.Sprintf("Retrain %q, priority %.0f%%; schedule a recap first thing tomorrow.", title, math.Round(entry.score*100))
	}
	if entry, ok := maxScored(s.noveltyCandidates); ok {
		title := s.titleFor(entry.id)
		return fmt.Sprintf("Try applying %q in a real task, novelty %.0f%%; strike while it's fresh.", title, math.Round(entry.score*100))
	}
	return ""
}

func (s *completionSession) titleFor(cardID uuid.UUID) string {
	if title, ok := s.titles[cardID]; ok {
		return title
	}
	return "key card"
}

func maxScored(entries []scoredCard) (scoredCard, bool) {
	if len(entries) == 0 {
		return scoredCard{}, false
	}
	best := entries[0]
	for _, entry := range entries[1:] {
		if entry.score > best.score {
			best = entry
		}
	}
	return best, true
}

func (s *completionSession) insights(metrics SummaryMetrics) []string {
	var insights []string
	if metrics.FailCount > 0 {
		insights = append(insights, fmt.Sprintf("%d cards flagged for retraining; shore up the weak spots first.", metrics.FailCount))
	}
	if metrics.PassRate >= 0.85 {
		insights = append(insights, "Pass rate looks strong; lean further into application practice.")
	} else if metrics.PassRate <= 0.6 {
		insights = append(insights, "Pass rate is low; revisit the fundamentals before moving on.")
	}
	if metrics.KvDelta > 0.2 {
		insights = append(insights, fmt.Sprintf("Knowledge velocity +%.2f, keep the momentum.", metrics.KvDelta))
	} else if metrics.KvDelta < -0.2 {
		insights = append(insights, fmt.Sprintf("Knowledge velocity %.2f, narrow the training scope.", metrics.KvDelta))
	}
	if metrics.Udr > 0.25 {
		insights = append(insights, fmt.Sprintf("Uncertainty dropped %+.0f%%, solid consolidation today.", metrics.Udr*100))
	} else if metrics.Udr < -0.1 {
		insights = append(insights, fmt.Sprintf("Uncertainty rose %+.0f%%, focus on reviewing the misses.", metrics.Udr*100))
	}
	if len(insights) == 0 {
		insights = append(insights, "Steady pace; a fresh queue will be generated tomorrow.")
	}
	return insights
}

func levelLabel(level skillpoint.Level) string {
	switch level {
	case skillpoint.LevelEmerging:
		return "emerging"
	case skillpoint.LevelWorking:
		return "working"
	case skillpoint.LevelFluent:
		return "fluent"
	default:
		return "unassessed"
	}
}
