package workout

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-recall/internal/card"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
)

// Scheduler is the entry point for the daily workout engine: it builds (or
// replays) today's plan and turns submitted results into card updates and
// session analytics.
type Scheduler struct {
	db             *gorm.DB
	store          *Store
	candidateLimit int
}

func NewScheduler(db *gorm.DB, candidateLimit int) *Scheduler {
	if candidateLimit <= 0 {
		candidateLimit = maxTodayCards * 3
	}
	return &Scheduler{
		db:             db,
		store:          NewStore(db),
		candidateLimit: candidateLimit,
	}
}

// GetOrSchedule returns today's pending plan, creating one if the day has
// none yet. Returns nil when there is nothing to practice.
func (s *Scheduler) GetOrSchedule() (*TodayPlan, error) {
	return s.getOrScheduleAt(time.Now().UTC())
}

func (s *Scheduler) getOrScheduleAt(now time.Time) (*TodayPlan, error) {
	if plan, err := s.store.LatestPendingForDay(now); err != nil {
		return nil, err
	} else if plan != nil {
		return plan, nil
	}

	hasCards, err := s.store.HasAnyCards()
	if err != nil {
		return nil, err
	}
	if !hasCards {
		return nil, nil
	}

	cardRepo := card.NewRepository(s.db)
	candidates, err := cardRepo.ListForToday(now, s.candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	stats, err := cardRepo.ReviewStatsAll()
	if err != nil {
		return nil, err
	}

	directions, err := directionDescriptors(s.db)
	if err != nil {
		return nil, err
	}
	skills, err := skillDescriptors(s.db)
	if err != nil {
		return nil, err
	}

	segments := scheduleSegments(now, candidates, stats, directions, skills)

	empty := true
	for _, segment := range segments {
		if len(segment.cards) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return nil, nil
	}

	plan := buildPlan(now, segments)
	if err := s.store.CreateTodayWorkout(&plan); err != nil {
		return nil, err
	}

	log.Printf("[Workout] scheduled %s: %d cards (quiz %d / apply %d / review %d)",
		plan.WorkoutID, plan.Totals.TotalCards, plan.Totals.Quiz, plan.Totals.Apply, plan.Totals.Review)

	return &plan, nil
}

// CompleteWorkout applies the submitted results to their cards, flips the
// workout to completed, and records the session summary. Everything runs in
// one transaction so a failure leaves the workout pending and untouched.
func (s *Scheduler) CompleteWorkout(workoutID uuid.UUID, inputs []ItemResultInput) (*CompletionSummary, error) {
	if len(inputs) == 0 {
		return nil, validationf("results cannot be empty")
	}

	now := time.Now().UTC()
	var summary *CompletionSummary

	err := s.db.Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		cardRepo := card.NewRepository(tx)

		if err := store.EnsurePending(workoutID); err != nil {
			return err
		}

		directions, err := directionDescriptors(tx)
		if err != nil {
			return err
		}
		skills, err := skillDescriptors(tx)
		if err != nil {
			return err
		}

		itemCards, err := store.ItemCardMap(workoutID)
		if err != nil {
			return err
		}

		session := newCompletionSession()
		payloadUpdates := make(map[uuid.UUID]ItemOutcome, len(inputs))

		for _, input := range inputs {
			cardID, ok := itemCards[input.ItemID]
			if !ok {
				return validationf("unknown workout item %s", input.ItemID)
			}

			c, err := cardRepo.Get(cardID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("card %s: %w", cardID, ErrNotFound)
			}

			outcome := applyResult(c, input.Result, now)
			if err := cardRepo.Save(c); err != nil {
				return err
			}

			session.record(outcome, c.Title)
			payloadUpdates[input.ItemID] = ItemOutcome{
				Result:    input.Result,
				NextDue:   outcome.nextDue,
				Stability: outcome.progress.Stability,
				Priority:  outcome.progress.Priority,
			}

			if err := store.SetItemResult(input.ItemID, string(input.Result), outcome.nextDue); err != nil {
				return err
			}
		}

		if err := store.MarkCompleted(workoutID, now); err != nil {
			return err
		}
		if err := store.AppendResults(workoutID, payloadUpdates); err != nil {
			return err
		}

		metrics := session.metrics(directions, skills)

		recommendation := session.cardRecommendation()
		if recommendation == "" {
			recommendation, err = recommendSkillGap(tx, now)
			if err != nil {
				return err
			}
		}
		if recommendation == "" {
			recommendation, err = recommendNeglectedDirection(tx, now)
			if err != nil {
				return err
			}
		}
		metrics.RecommendedFocus = recommendation

		if err := store.RecordSummary(workoutID, now, metrics); err != nil {
			return err
		}

		summary = &CompletionSummary{
			WorkoutID:   workoutID,
			CompletedAt: now,
			Updates:     session.progress,
			Metrics:     metrics,
			Insights:    session.insights(metrics),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Workout] completed %s: %d items, pass rate %.2f",
		workoutID, summary.Metrics.TotalItems, summary.Metrics.PassRate)

	return summary, nil
}

func directionDescriptors(db *gorm.DB) (map[uuid.UUID]DirectionDescriptor, error) {
	list, err := direction.NewRepository(db).List()
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]DirectionDescriptor, len(list))
	for _, entry := range list {
		result[entry.ID] = DirectionDescriptor{Name: entry.Name, Stage: entry.Stage}
	}
	return result, nil
}

func skillDescriptors(db *gorm.DB) (map[uuid.UUID]SkillDescriptor, error) {
	list, err := skillpoint.NewRepository(db).ListAll()
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]SkillDescriptor, len(list))
	for _, entry := range list {
		result[entry.ID] = SkillDescriptor{Name: entry.Name, Level: entry.Level}
	}
	return result, nil
}

// recommendSkillGap suggests the skill with the strongest growth pressure
// among tomorrow's candidates, if any clears the 0.45 bar.
func recommendSkillGap(db *gorm.DB, now time.Time) (string, error) {
	cardRepo := card.NewRepository(db)
	candidates, err := cardRepo.ListForToday(now, maxTodayCards*3)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}

	stats, err := cardRepo.ReviewStatsAll()
	if err != nil {
		return "", err
	}
	skills, err := skillDescriptors(db)
	if err != nil {
		return "", err
	}

	signals := analyzeSkillSignals(candidates, stats, now, skills)
	if len(signals) == 0 {
		return "", nil
	}

	totalWithSkills := 0
	for i := range candidates {
		if candidates[i].SkillPointID != nil {
			totalWithSkills++
		}
	}
	if totalWithSkills == 0 {
		return "", nil
	}

	var best *SkillSignal
	var bestID uuid.UUID
	for i := range candidates {
		c := &candidates[i]
		if c.SkillPointID == nil {
			continue
		}
		signal, ok := signals[*c.SkillPointID]
		if !ok || signal.growthPressure() < 0.45 {
			continue
		}
		if best == nil || signal.growthPressure() > best.growthPressure() {
			entry := signal
			best = &entry
			bestID = *c.SkillPointID
		}
	}
	if best == nil {
		return "", nil
	}

	descriptor := skillDescriptor(skills, bestID)
	demand := math.Round(best.growthPressure() * 100)
	share := math.Round(best.share(totalWithSkills) * 100)

	return fmt.Sprintf("Skill %q (%s) growth pressure %.0f%%, %d candidate cards (%.0f%% coverage); schedule targeted application and review.",
		descriptor.Name, levelLabel(descriptor.Level), demand, best.Count, share), nil
}

// recommendNeglectedDirection suggests waking up the most neglected direction
// once its neglect pressure reaches 0.45.
func recommendNeglectedDirection(db *gorm.DB, now time.Time) (string, error) {
	cardRepo := card.NewRepository(db)
	candidates, err := cardRepo.ListForToday(now, maxTodayCards*3)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}

	stats, err := cardRepo.ReviewStatsAll()
	if err != nil {
		return "", err
	}
	directions, err := directionDescriptors(db)
	if err != nil {
		return "", err
	}

	signals := analyzeDirectionSignals(candidates, stats, now)

	neglectedCounts := make(map[uuid.UUID]int)
	for i := range candidates {
		c := &candidates[i]
		staleness := stalenessFromStats(statsFor(stats, c.ID), now)
		if staleness >= 0.7 {
			neglectedCounts[c.DirectionID]++
		}
	}

	var best *DirectionSignal
	var bestID uuid.UUID
	for i := range candidates {
		c := &candidates[i]
		signal, ok := signals[c.DirectionID]
		if !ok || signal.NeglectPressure < 0.45 {
			continue
		}
		if best == nil || signal.NeglectPressure > best.NeglectPressure {
			entry := signal
			best = &entry
			bestID = c.DirectionID
		}
	}
	if best == nil {
		return "", nil
	}

	descriptor := directionDescriptor(directions, bestID)
	demand := math.Round(best.NeglectPressure * 100)
	if count := neglectedCounts[bestID]; count > 0 {
		return fmt.Sprintf("Direction %q has %d cards unpracticed for over 5 days (wake-up demand %.0f%%); schedule a refresher tomorrow.",
			descriptor.Name, count, demand), nil
	}
	return fmt.Sprintf("Direction %q wake-up demand %.0f%%; schedule catch-up practice tomorrow.",
		descriptor.Name, demand), nil
}
