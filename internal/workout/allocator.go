package workout

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
)

// Daily workout sizing. A full day splits 20 cards 5/10/5 across the
// quiz, apply and review segments.
const (
	maxTodayCards = 20
	quizTarget    = 5
	applyTarget   = 10
	reviewTarget  = 5
)

// segmentTargets splits an available pool across the three phases. Pools of
// maxTodayCards or more get the canonical 5/10/5; smaller pools are divided
// proportionally, remainders round-robin from quiz, and any pool of at least
// three cards guarantees every phase one slot.
func segmentTargets(totalAvailable int) (int, int, int) {
	if totalAvailable == 0 {
		return 0, 0, 0
	}
	if totalAvailable >= maxTodayCards {
		return quizTarget, applyTarget, reviewTarget
	}

	base := [3]float64{quizTarget, applyTarget, reviewTarget}
	var targets [3]int
	allocated := 0

	for idx, portion := range base {
		if allocated >= totalAvailable {
			break
		}
		share := int(portion / maxTodayCards * float64(totalAvailable))
		if share > totalAvailable-allocated {
			share = totalAvailable - allocated
		}
		targets[idx] = share
		allocated += share
	}

	for idx := 0; allocated < totalAvailable; idx++ {
		targets[idx%3]++
		allocated++
	}

	if totalAvailable >= 3 {
		for idx := range targets {
			if targets[idx] == 0 {
				targets[idx] = 1
			}
		}
	}

	sum := targets[0] + targets[1] + targets[2]
	for sum > totalAvailable {
		maxIdx := 0
		for idx := 1; idx < 3; idx++ {
			if targets[idx] > targets[maxIdx] {
				maxIdx = idx
			}
		}
		if targets[maxIdx] == 0 {
			break
		}
		targets[maxIdx]--
		sum--
	}

	return targets[0], targets[1], targets[2]
}

// segmentAllocation is the intermediate result of scheduling one phase.
type segmentAllocation struct {
	phase        Phase
	focus        string
	focusDetails *SegmentFocus
	cards        []card.MemoryCard
}

type scoredCard struct {
	id    uuid.UUID
	score float64
}

// sortScoredDesc orders by score descending, keeping insertion order for ties
// so scheduling stays deterministic for a given candidate list.
func sortScoredDesc(entries []scoredCard) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
}

// scheduleSegments runs the full allocation: per-phase targets, seeded picks,
// score-ranked top-up, cross-phase backfill, then focus derivation.
func scheduleSegments(
	now time.Time,
	cards []card.MemoryCard,
	stats map[uuid.UUID]card.ReviewStats,
	directions map[uuid.UUID]DirectionDescriptor,
	skills map[uuid.UUID]SkillDescriptor,
) []segmentAllocation {
	if len(cards) == 0 {
		return nil
	}

	totalPool := len(cards)
	if totalPool > maxTodayCards {
		totalPool = maxTodayCards
	}

	quizCount, applyCount, reviewCount := segmentTargets(totalPool)

	directionSignals := analyzeDirectionSignals(cards, stats, now)
	skillSignals := analyzeSkillSignals(cards, stats, now, skills)

	scoreMap := make(map[uuid.UUID]segmentScores, len(cards))
	for i := range cards {
		c := &cards[i]
		scoreMap[c.ID] = computeSegmentScores(c, statsFor(stats, c.ID), now, directions, directionSignals, skillSignals)
	}

	targets := []struct {
		phase  Phase
		target int
	}{
		{PhaseQuiz, quizCount},
		{PhaseApply, applyCount},
		{PhaseReview, reviewCount},
	}

	selected := make(map[uuid.UUID]bool)
	segments := make([]segmentAllocation, 0, len(targets))

	for _, entry := range targets {
		if entry.target == 0 {
			segments = append(segments, segmentAllocation{phase: entry.phase})
			continue
		}

		seeded := seedPhase(entry.phase, entry.target, now, cards, stats, selected, directions, directionSignals, skillSignals)
		if len(seeded) < entry.target {
			additional := pickForPhase(entry.phase, entry.target-len(seeded), cards, scoreMap, selected, directionSignals, skillSignals)
			seeded = append(seeded, additional...)
		}

		segments = append(segments, segmentAllocation{phase: entry.phase, cards: seeded})
	}

	fillSegmentShortfalls(segments, targets, cards, scoreMap, selected, directionSignals, skillSignals)

	for idx := range segments {
		segment := &segments[idx]
		if len(segment.cards) == 0 {
			continue
		}
		details := deriveFocus(segment.phase, segment.cards, now, stats, directions, skills, skillSignals)
		if details != nil {
			segment.focus = details.Headline
			segment.focusDetails = details
		}
	}

	return segments
}

func seedPhase(
	phase Phase,
	target int,
	now time.Time,
	cards []card.MemoryCard,
	stats map[uuid.UUID]card.ReviewStats,
	selected map[uuid.UUID]bool,
	directions map[uuid.UUID]DirectionDescriptor,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) []card.MemoryCard {
	switch phase {
	case PhaseQuiz:
		return seedQuizPhase(target, now, cards, stats, selected, directions, directionSignals, skillSignals)
	case PhaseApply:
		return seedApplyPhase(target, now, cards, stats, selected, directions, directionSignals, skillSignals)
	default:
		return seedReviewPhase(target, now, cards, stats, selected, directions, directionSignals, skillSignals)
	}
}

// seedQuizPhase anchors the quiz segment on due, unseen or neglected cards
// before generic scoring tops it up. At most four seeds.
func seedQuizPhase(
	target int,
	now time.Time,
	cards []card.MemoryCard,
	stats map[uuid.UUID]card.ReviewStats,
	selected map[uuid.UUID]bool,
	directions map[uuid.UUID]DirectionDescriptor,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) []card.MemoryCard {
	if target == 0 {
		return nil
	}
	limit := target
	if limit > 4 {
		limit = 4
	}

	var entries []scoredCard
	for i := range cards {
		c := &cards[i]
		if selected[c.ID] {
			continue
		}
		stat := stats[c.ID]
		due := dueUrgency(c, now)
		isNew := stat.LastSeen == nil
		directionSignal := directionSignals[c.DirectionID]
		var skillSignal SkillSignal
		if c.SkillPointID != nil {
			skillSignal = skillSignals[*c.SkillPointID]
		}
		if due < 0.55 && !isNew && directionSignal.NeglectPressure < 0.45 {
			continue
		}
		stabilityGap := clampUnit(1.0 - c.Stability)
		novelty := clampUnit(c.Novelty)
		newBonus := 0.0
		if isNew {
			newBonus = 0.1
		}
		score := 0.45*due +
			0.25*stabilityGap +
			0.2*novelty +
			newBonus +
			stageBiasFor(directions, c.DirectionID).quiz +
			0.2*directionSignal.quizBias() +
			0.12*directionSignal.NeglectPressure +
			0.08*skillSignal.quizBias() +
			0.05*skillSignal.levelGap()
		entries = append(entries, scoredCard{id: c.ID, score: score})
	}

	return takeTop(entries, limit, cards, selected)
}

// seedApplyPhase anchors the apply segment on cards with momentum or high
// relevance; cold cards in fail trouble are skipped unless their direction is
// in an apply-heavy stage. At most four seeds.
func seedApplyPhase(
	target int,
	now time.Time,
	cards []card.MemoryCard,
	stats map[uuid.UUID]card.ReviewStats,
	selected map[uuid.UUID]bool,
	directions map[uuid.UUID]DirectionDescriptor,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) []card.MemoryCard {
	if target == 0 {
		return nil
	}
	limit := target
	if limit > 4 {
		limit = 4
	}

	var entries []scoredCard
	for i := range cards {
		c := &cards[i]
		if selected[c.ID] {
			continue
		}
		stat := stats[c.ID]
		momentum := clampUnit(float64(stat.ConsecutivePasses) / 4.0)
		failRate := stat.FailRate()
		bias := stageBiasFor(directions, c.DirectionID)
		if momentum == 0 && failRate > 0.4 && c.Novelty < 0.6 && bias.apply < 0.08 {
			continue
		}
		freshness := freshnessScore(&stat, now)
		directionSignal := directionSignals[c.DirectionID]
		var skillSignal SkillSignal
		if c.SkillPointID != nil {
			skillSignal = skillSignals[*c.SkillPointID]
		}
		score := 0.35*c.Relevance +
			0.23*c.Novelty +
			0.18*momentum +
			0.1*freshness +
			0.1*(1.0-failRate) +
			bias.apply +
			0.18*directionSignal.applyBias() +
			0.1*directionSignal.NeglectPressure +
			0.1*skillSignal.applyBias() +
			0.06*skillSignal.levelGap()
		entries = append(entries, scoredCard{id: c.ID, score: score})
	}

	return takeTop(entries, limit, cards, selected)
}

// seedReviewPhase anchors the review segment on cards with real fail history.
// At most five seeds.
func seedReviewPhase(
	target int,
	now time.Time,
	cards []card.MemoryCard,
	stats map[uuid.UUID]card.ReviewStats,
	selected map[uuid.UUID]bool,
	directions map[uuid.UUID]DirectionDescriptor,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) []card.MemoryCard {
	if target == 0 {
		return nil
	}
	limit := target
	if limit > 5 {
		limit = 5
	}

	var entries []scoredCard
	for i := range cards {
		c := &cards[i]
		if selected[c.ID] {
			continue
		}
		stat, ok := stats[c.ID]
		if !ok {
			continue
		}
		failRate := stat.FailRate()
		streak := clampUnit(float64(stat.ConsecutiveFails) / 3.0)
		if streak == 0 && failRate < 0.25 {
			continue
		}
		due := dueUrgency(c, now)
		recency := lastFailPressure(&stat, now)
		directionSignal := directionSignals[c.DirectionID]
		var skillSignal SkillSignal
		if c.SkillPointID != nil {
			skillSignal = skillSignals[*c.SkillPointID]
		}
		score := 0.4*failRate +
			0.3*streak +
			0.2*due +
			0.1*recency +
			stageBiasFor(directions, c.DirectionID).review +
			0.2*directionSignal.reviewBias() +
			0.1*directionSignal.NeglectPressure +
			0.1*skillSignal.reviewBias() +
			0.05*skillSignal.levelGap()
		entries = append(entries, scoredCard{id: c.ID, score: score})
	}

	return takeTop(entries, limit, cards, selected)
}

// pickForPhase fills a segment's remaining slots from the whole unselected
// pool, ranked by the phase score plus direction and skill biases.
func pickForPhase(
	phase Phase,
	target int,
	cards []card.MemoryCard,
	scoreMap map[uuid.UUID]segmentScores,
	selected map[uuid.UUID]bool,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) []card.MemoryCard {
	var entries []scoredCard
	for i := range cards {
		c := &cards[i]
		directionSignal := directionSignals[c.DirectionID]
		var skillSignal SkillSignal
		if c.SkillPointID != nil {
			skillSignal = skillSignals[*c.SkillPointID]
		}
		entries = append(entries, scoredCard{
			id: c.ID,
			score: scoreMap[c.ID].forPhase(phase) +
				0.12*directionSignal.forPhase(phase) +
				0.05*directionSignal.NeglectPressure +
				0.08*skillSignal.forPhase(phase) +
				0.05*skillSignal.growthPressure(),
		})
	}

	sortScoredDesc(entries)

	byID := indexCards(cards)
	var picked []card.MemoryCard
	for _, entry := range entries {
		if len(picked) >= target {
			break
		}
		if selected[entry.id] {
			continue
		}
		picked = append(picked, *byID[entry.id])
		selected[entry.id] = true
	}
	return picked
}

// fillSegmentShortfalls backfills any segment still short of its target from
// the leftover pool, ranked by composite score.
func fillSegmentShortfalls(
	segments []segmentAllocation,
	targets []struct {
		phase  Phase
		target int
	},
	cards []card.MemoryCard,
	scoreMap map[uuid.UUID]segmentScores,
	selected map[uuid.UUID]bool,
	directionSignals map[uuid.UUID]DirectionSignal,
	skillSignals map[uuid.UUID]SkillSignal,
) {
	var leftovers []scoredCard
	for i := range cards {
		c := &cards[i]
		if selected[c.ID] {
			continue
		}
		directionSignal := directionSignals[c.DirectionID]
		var skillSignal SkillSignal
		if c.SkillPointID != nil {
			skillSignal = skillSignals[*c.SkillPointID]
		}
		leftovers = append(leftovers, scoredCard{
			id: c.ID,
			score: scoreMap[c.ID].composite +
				0.15*directionSignal.compositeBias() +
				0.08*directionSignal.NeglectPressure +
				0.08*skillSignal.growthPressure(),
		})
	}

	sortScoredDesc(leftovers)

	byID := indexCards(cards)
	next := 0
	for idx := range segments {
		target := targets[idx].target
		if target == 0 {
			continue
		}
		for len(segments[idx].cards) < target && next < len(leftovers) {
			entry := leftovers[next]
			next++
			if selected[entry.id] {
				continue
			}
			segments[idx].cards = append(segments[idx].cards, *byID[entry.id])
			selected[entry.id] = true
		}
	}
}

func takeTop(entries []scoredCard, limit int, cards []card.MemoryCard, selected map[uuid.UUID]bool) []card.MemoryCard {
	sortScoredDesc(entries)
	byID := indexCards(cards)
	var picks []card.MemoryCard
	for _, entry := range entries {
		if len(picks) >= limit {
			break
		}
		selected[entry.id] = true
		picks = append(picks, *byID[entry.id])
	}
	return picks
}

func indexCards(cards []card.MemoryCard) map[uuid.UUID]*card.MemoryCard {
	byID := make(map[uuid.UUID]*card.MemoryCard, len(cards))
	for i := range cards {
		byID[cards[i].ID] = &cards[i]
	}
	return byID
}
