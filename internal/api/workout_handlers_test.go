package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-recall/internal/card"
	"go-recall/internal/config"
	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/workout"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func workoutRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/today", TodayHandler(cfg))
	r.POST("/today/workouts/:id/complete", CompleteWorkoutHandler(cfg))
	return r
}

func seedPracticePool(t *testing.T, count int) {
	t.Helper()
	dir, err := direction.NewRepository(db.DB).Create("Systems", direction.StageAttack, nil)
	if err != nil {
		t.Fatalf("failed to seed direction: %v", err)
	}
	repo := card.NewRepository(db.DB)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		draft := card.Draft{Title: "pool card", CardType: card.TypeConcept}
		if i%2 == 0 {
			due := now.Add(-time.Hour)
			draft.NextDue = &due
		}
		if _, err := repo.Create(dir.ID, draft); err != nil {
			t.Fatalf("failed to seed card: %v", err)
		}
	}
}

func TestTodayHandler_NoCards(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	cfg := &config.Config{}
	r := workoutRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/today", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "No cards to practice today") {
		t.Errorf("expected the empty-pool message, got: %s", w.Body.String())
	}
}

func TestTodayHandler_SchedulesAndReplays(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	seedPracticePool(t, 8)
	cfg := &config.Config{}
	r := workoutRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/today", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Workout *workout.TodayPlan `json:"workout"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode today response: %v", err)
	}
	if resp.Workout == nil {
		t.Fatal("expected a scheduled workout")
	}
	if resp.Workout.Totals.TotalCards != 8 {
		t.Errorf("total cards = %d, want 8", resp.Workout.Totals.TotalCards)
	}

	// A second request on the same day returns the same workout.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/today", nil)
	r.ServeHTTP(w, req)
	var replay struct {
		Workout *workout.TodayPlan `json:"workout"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &replay); err != nil {
		t.Fatalf("failed to decode replay response: %v", err)
	}
	if replay.Workout == nil || replay.Workout.WorkoutID != resp.Workout.WorkoutID {
		t.Errorf("replay should return the same workout, got %+v", replay.Workout)
	}
}

func TestCompleteWorkoutHandler_FullFlow(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	seedPracticePool(t, 6)
	cfg := &config.Config{}
	r := workoutRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/today", nil)
	r.ServeHTTP(w, req)
	var resp struct {
		Workout *workout.TodayPlan `json:"workout"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Workout == nil {
		t.Fatalf("failed to schedule workout: err=%v body=%s", err, w.Body.String())
	}

	var results []map[string]string
	for _, segment := range resp.Workout.Segments {
		for _, item := range segment.Items {
			outcome := "pass"
			if len(results)%2 == 1 {
				outcome = "fail"
			}
			results = append(results, map[string]string{
				"item_id": item.ItemID.String(),
				"result":  outcome,
			})
		}
	}
	b, _ := json.Marshal(map[string]interface{}{"results": results})

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/today/workouts/"+resp.Workout.WorkoutID.String()+"/complete", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var summary workout.CompletionSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode completion summary: %v", err)
	}
	if summary.Metrics.TotalItems != len(results) {
		t.Errorf("total items = %d, want %d", summary.Metrics.TotalItems, len(results))
	}
	if len(summary.Insights) == 0 {
		t.Error("expected at least one insight")
	}

	// Completing the same workout again is rejected.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/today/workouts/"+resp.Workout.WorkoutID.String()+"/complete", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a second completion, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "already completed") {
		t.Errorf("expected the already-completed message, got: %s", w.Body.String())
	}
}

func TestCompleteWorkoutHandler_Validation(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	cfg := &config.Config{}
	r := workoutRouter(cfg)

	// Bad workout id in the path
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/today/workouts/not-a-uuid/complete", bytes.NewReader([]byte(`{"results":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown workout with a valid payload
	body := []byte(`{"results":[{"item_id":"` + uuid.New().String() + `","result":"pass"}]}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/today/workouts/"+uuid.New().String()+"/complete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown workout: expected 404, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown review result
	body = []byte(`{"results":[{"item_id":"` + uuid.New().String() + `","result":"maybe"}]}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/today/workouts/"+uuid.New().String()+"/complete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad result: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
