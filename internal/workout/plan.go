package workout

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/skillpoint"
)

// buildPlan turns segment allocations into the persisted daily plan. Empty
// segments are dropped; every item gets its own id and a sequence within its
// segment.
func buildPlan(now time.Time, allocations []segmentAllocation) TodayPlan {
	var totals Totals
	var segments []SegmentPlan

	for _, allocation := range allocations {
		if len(allocation.cards) == 0 {
			continue
		}

		items := make([]ItemPlan, 0, len(allocation.cards))
		for idx, c := range allocation.cards {
			items = append(items, ItemPlan{
				ItemID:   uuid.New(),
				Card:     c,
				Sequence: idx,
			})
		}

		switch allocation.phase {
		case PhaseQuiz:
			totals.Quiz += len(items)
		case PhaseApply:
			totals.Apply += len(items)
		case PhaseReview:
			totals.Review += len(items)
		}

		segments = append(segments, SegmentPlan{
			Phase:        allocation.phase,
			Focus:        allocation.focus,
			FocusDetails: allocation.focusDetails,
			Items:        items,
		})
	}

	totals.TotalCards = totals.Quiz + totals.Apply + totals.Review

	return TodayPlan{
		WorkoutID:    uuid.New(),
		ScheduledFor: now,
		GeneratedAt:  now,
		Segments:     segments,
		Totals:       totals,
	}
}

// deriveFocus summarises what a segment is about: a headline, a handful of
// highlights, and per-direction / per-skill breakdowns.
func deriveFocus(
	phase Phase,
	cards []card.MemoryCard,
	now time.Time,
	statsMap map[uuid.UUID]card.ReviewStats,
	directions map[uuid.UUID]DirectionDescriptor,
	skills map[uuid.UUID]SkillDescriptor,
	skillSignals map[uuid.UUID]SkillSignal,
) *SegmentFocus {
	if len(cards) == 0 {
		return nil
	}

	var dueCount, newCount, failFocus, unstableCount, highRelevance, momentumCount, neglectedCount int

	for i := range cards {
		c := &cards[i]
		if dueUrgency(c, now) > 0.6 {
			dueCount++
		}
		if c.Stability < 0.45 {
			unstableCount++
		}
		if c.Relevance >= 0.65 {
			highRelevance++
		}

		staleness := 1.0
		if stats, ok := statsMap[c.ID]; ok {
			if stats.TotalReviews() == 0 {
				newCount++
			}
			if stats.ConsecutiveFails > 0 || stats.FailRate() >= 0.4 {
				failFocus++
			}
			if stats.ConsecutivePasses >= 2 {
				momentumCount++
			}
			staleness = stalenessFromStats(&stats, now)
		} else {
			newCount++
		}

		if staleness >= 0.7 {
			neglectedCount++
		}
	}

	var headline string
	switch phase {
	case PhaseQuiz:
		var base string
		switch {
		case dueCount > 0 && newCount > 0:
			base = fmt.Sprintf("%d due · %d new", dueCount, newCount)
		case dueCount > 0:
			base = fmt.Sprintf("%d cards due for review", dueCount)
		case newCount > 0:
			base = fmt.Sprintf("first pass on %d new cards", newCount)
		default:
			base = fmt.Sprintf("reinforce %d foundation cards", len(cards))
		}
		headline = base + ", quick recall check"
	case PhaseApply:
		var base string
		switch {
		case highRelevance > 0 && momentumCount > 0:
			base = fmt.Sprintf("%d high-relevance · %d on a streak", highRelevance, momentumCount)
		case highRelevance > 0:
			base = fmt.Sprintf("%d high-relevance cards", highRelevance)
		case momentumCount > 0:
			base = fmt.Sprintf("keep the streak on %d cards", momentumCount)
		default:
			base = fmt.Sprintf("application drill on %d cards", len(cards))
		}
		headline = base + ", applied in context"
	default:
		var base string
		switch {
		case failFocus > 0 && unstableCount > 0:
			base = fmt.Sprintf("%d missed · %d low-stability", failFocus, unstableCount)
		case failFocus > 0:
			base = fmt.Sprintf("review %d missed cards", failFocus)
		case unstableCount > 0:
			base = fmt.Sprintf("shore up stability on %d cards", unstableCount)
		default:
			base = fmt.Sprintf("consolidate %d cards", len(cards))
		}
		headline = base + ", close the weak spots"
	}

	var highlights []string
	switch phase {
	case PhaseQuiz:
		if dueCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d due or overdue cards", dueCount))
		}
		if newCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d first-pass new cards", newCount))
		}
		if unstableCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d cards with stability to build", unstableCount))
		}
		if neglectedCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d long-unpracticed cards", neglectedCount))
		}
	case PhaseApply:
		if highRelevance > 0 {
			highlights = append(highlights, fmt.Sprintf("%d high-relevance scenarios", highRelevance))
		}
		if momentumCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d cards on a pass streak", momentumCount))
		}
		if newCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d fresh memories to transfer", newCount))
		}
		if neglectedCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d long-unpracticed cards", neglectedCount))
		}
	default:
		if failFocus > 0 {
			highlights = append(highlights, fmt.Sprintf("%d recently missed cards", failFocus))
		}
		if unstableCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d cards below 45%% stability", unstableCount))
		}
		if dueCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d cards past due", dueCount))
		}
		if neglectedCount > 0 {
			highlights = append(highlights, fmt.Sprintf("%d long-unpracticed cards", neglectedCount))
		}
	}

	directionBreakdown := buildDirectionBreakdown(cards, directions, statsMap, now)
	skillBreakdown := buildSkillBreakdown(cards, skills, statsMap, now)

	if len(skillBreakdown) > 0 {
		primary := skillBreakdown[0]
		sharePct := int(math.Round(primary.Share * 100))
		summary := fmt.Sprintf("focus skill %q · %d cards (%d%%)", primary.Name, primary.Count, sharePct)
		if !anyContains(highlights, primary.Name) {
			highlights = append([]string{summary}, highlights...)
		}
	}

	var growthSkill *uuid.UUID
	var growthSignal SkillSignal
	for i := range cards {
		c := &cards[i]
		if c.SkillPointID == nil {
			continue
		}
		signal, ok := skillSignals[*c.SkillPointID]
		if !ok {
			continue
		}
		if growthSkill == nil || signal.growthPressure() > growthSignal.growthPressure() {
			id := *c.SkillPointID
			growthSkill = &id
			growthSignal = signal
		}
	}

	if growthSkill != nil {
		for _, entry := range skillBreakdown {
			if entry.SkillPointID != *growthSkill {
				continue
			}
			growth := math.Round(growthSignal.growthPressure() * 100)
			if growth >= 55 && !anyContainsBoth(highlights, entry.Name, "growth") {
				highlights = append(highlights, fmt.Sprintf("skill %q growth pressure %.0f%%, schedule applied transfer", entry.Name, growth))
			}
			break
		}
	}

	if len(highlights) > 5 {
		highlights = highlights[:5]
	}

	return &SegmentFocus{
		Headline:           headline,
		Highlights:         highlights,
		DirectionBreakdown: directionBreakdown,
		SkillBreakdown:     skillBreakdown,
	}
}

func anyContains(items []string, needle string) bool {
	for _, item := range items {
		if strings.Contains(item, needle) {
			return true
		}
	}
	return false
}

func anyContainsBoth(items []string, first, second string) bool {
	for _, item := range items {
		if strings.Contains(item, first) && strings.Contains(item, second) {
			return true
		}
	}
	return false
}

type focusBucket struct {
	count            int
	dueWeight        float64
	newWeight        float64
	failWeight       float64
	unstableWeight   float64
	momentumWeight   float64
	recentFailWeight float64
	staleWeight      float64
}

func (b *focusBucket) average(weight float64) float64 {
	if b.count == 0 {
		return 0
	}
	return clampUnit(weight / float64(b.count))
}

func buildDirectionBreakdown(
	cards []card.MemoryCard,
	directions map[uuid.UUID]DirectionDescriptor,
	statsMap map[uuid.UUID]card.ReviewStats,
	now time.Time,
) []SegmentDirectionFocus {
	if len(cards) == 0 {
		return nil
	}

	buckets := make(map[uuid.UUID]*focusBucket)
	var order []uuid.UUID

	for i := range cards {
		c := &cards[i]
		bucket := buckets[c.DirectionID]
		if bucket == nil {
			bucket = &focusBucket{}
			buckets[c.DirectionID] = bucket
			order = append(order, c.DirectionID)
		}
		bucket.count++
		bucket.dueWeight += dueUrgency(c, now)
		bucket.unstableWeight += clampUnit(1.0 - c.Stability)

		if stats, ok := statsMap[c.ID]; ok {
			if stats.TotalReviews() == 0 {
				bucket.newWeight++
			}
			bucket.failWeight += 0.6*stats.FailRate() + 0.2*clampUnit(float64(stats.ConsecutiveFails)/3.0)
			bucket.momentumWeight += clampUnit(float64(stats.ConsecutivePasses) / 4.0)
			bucket.recentFailWeight += lastFailPressure(&stats, now)
			bucket.staleWeight += stalenessFromStats(&stats, now)
		} else {
			bucket.newWeight++
			bucket.staleWeight++
		}
	}

	total := float64(len(cards))
	breakdown := make([]SegmentDirectionFocus, 0, len(order))
	for _, directionID := range order {
		bucket := buckets[directionID]
		descriptor := directionDescriptor(directions, directionID)

		var signals []string
		failRatio := bucket.average(bucket.failWeight)
		if failRatio >= 0.45 {
			signals = append(signals, "high fail pressure")
		} else if bucket.failWeight > 0 {
			signals = append(signals, "has missed cards to review")
		}

		dueRatio := bucket.average(bucket.dueWeight)
		if dueRatio >= 0.5 {
			signals = append(signals, "several cards coming due")
		} else if bucket.dueWeight > 0 {
			signals = append(signals, "includes due cards")
		}

		newRatio := bucket.average(bucket.newWeight)
		if newRatio >= 0.5 {
			signals = append(signals, "many new cards awaiting first pass")
		} else if bucket.newWeight > 0 {
			signals = append(signals, "new cards for a quick start")
		}

		if bucket.average(bucket.unstableWeight) >= 0.4 {
			signals = append(signals, "stability low across the board")
		}
		if bucket.average(bucket.momentumWeight) >= 0.45 {
			signals = append(signals, "keep the pass streak going")
		}
		if bucket.average(bucket.recentFailWeight) >= 0.4 && failRatio < 0.45 {
			signals = append(signals, "recent misses need a recap")
		}

		staleRatio := bucket.average(bucket.staleWeight)
		if staleRatio >= 0.5 {
			signals = append(signals, "direction needs a wake-up")
		} else if staleRatio >= 0.3 {
			signals = append(signals, "includes long-unpracticed cards")
		}

		if len(signals) > 3 {
			signals = signals[:3]
		}

		breakdown = append(breakdown, SegmentDirectionFocus{
			DirectionID: directionID,
			Name:        descriptor.Name,
			Stage:       descriptor.Stage,
			Count:       bucket.count,
			Share:       clampUnit(float64(bucket.count) / total),
			Signals:     signals,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Count > breakdown[j].Count
	})
	return breakdown
}

func buildSkillBreakdown(
	cards []card.MemoryCard,
	skills map[uuid.UUID]SkillDescriptor,
	statsMap map[uuid.UUID]card.ReviewStats,
	now time.Time,
) []SegmentSkillFocus {
	if len(cards) == 0 {
		return nil
	}

	buckets := make(map[uuid.UUID]*focusBucket)
	var order []uuid.UUID
	total := 0

	for i := range cards {
		c := &cards[i]
		if c.SkillPointID == nil {
			continue
		}
		total++
		skillID := *c.SkillPointID
		bucket := buckets[skillID]
		if bucket == nil {
			bucket = &focusBucket{}
			buckets[skillID] = bucket
			order = append(order, skillID)
		}
		bucket.count++
		bucket.dueWeight += dueUrgency(c, now)
		bucket.unstableWeight += clampUnit(1.0 - c.Stability)

		if stats, ok := statsMap[c.ID]; ok {
			if stats.TotalReviews() == 0 {
				bucket.newWeight++
			}
			bucket.failWeight += 0.6*stats.FailRate() + 0.2*clampUnit(float64(stats.ConsecutiveFails)/3.0)
			bucket.momentumWeight += clampUnit(float64(stats.ConsecutivePasses) / 4.0)
			bucket.staleWeight += stalenessFromStats(&stats, now)
		} else {
			bucket.newWeight++
			bucket.staleWeight++
		}
	}

	if total == 0 {
		return nil
	}

	breakdown := make([]SegmentSkillFocus, 0, len(order))
	for _, skillID := range order {
		bucket := buckets[skillID]
		descriptor := skillDescriptor(skills, skillID)

		signals := []string{levelSignal(descriptor.Level)}

		failRatio := bucket.average(bucket.failWeight)
		if failRatio >= 0.45 {
			signals = append(signals, "high fail pressure")
		} else if failRatio >= 0.25 {
			signals = append(signals, "watch for repeat misses")
		}

		if bucket.average(bucket.dueWeight) >= 0.5 {
			signals = append(signals, "several cards coming due")
		}
		if bucket.average(bucket.newWeight) >= 0.4 {
			signals = append(signals, "many new cards to transfer")
		}
		if bucket.average(bucket.staleWeight) >= 0.45 {
			signals = append(signals, "skill unpracticed lately")
		}
		if bucket.average(bucket.momentumWeight) >= 0.5 {
			signals = append(signals, "keep the pass streak going")
		}

		if len(signals) > 3 {
			signals = signals[:3]
		}

		breakdown = append(breakdown, SegmentSkillFocus{
			SkillPointID: skillID,
			Name:         descriptor.Name,
			Level:        descriptor.Level,
			Count:        bucket.count,
			Share:        clampUnit(float64(bucket.count) / float64(total)),
			Signals:      signals,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Share != breakdown[j].Share {
			return breakdown[i].Share > breakdown[j].Share
		}
		return breakdown[i].Count > breakdown[j].Count
	})
	return breakdown
}

func levelSignal(level skillpoint.Level) string {
	switch level {
	case skillpoint.LevelEmerging:
		return "in the emerging stage"
	case skillpoint.LevelWorking:
		return "in the working stage"
	case skillpoint.LevelFluent:
		return "approaching fluency"
	default:
		return "mastery not yet assessed"
	}
}
