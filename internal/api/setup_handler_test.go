package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-recall/internal/card"
	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
	"go-recall/internal/user"
	"go-recall/internal/workout"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// MIGRATE ALL MODELS USED IN TESTS!
	if err := dbConn.AutoMigrate(
		&user.User{},
		&direction.Direction{},
		&skillpoint.SkillPoint{},
		&card.MemoryCard{},
		&workout.Workout{},
		&workout.WorkoutItem{},
		&workout.WorkoutSummary{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.DB = dbConn
	return dbConn
}

func resetTables(t *testing.T) {
	for _, table := range []string{
		"users", "workout_summaries", "workout_items", "workouts",
		"memory_cards", "skill_points", "directions",
	} {
		if err := db.DB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s table: %v", table, err)
		}
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestSetupHandler_AllowsInitialSetup(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/setup", SetupHandler())
	payload := SetupRequest{Username: "owner1", Password: "pw1"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/setup", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "setup_complete") {
		t.Errorf("setup response should indicate completion, got: %s", w.Body.String())
	}
}

func TestSetupHandler_ForbiddenIfUserExists(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	// Seed one user to block setup
	u := user.User{Username: "existing", PasswordHash: "hash", Role: user.RoleOwner, CreatedAt: time.Now()}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/setup", SetupHandler())
	payload := SetupRequest{Username: "owner2", Password: "pw2"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/setup", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetupHandler_RequiresCredentials(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/setup", SetupHandler())
	b, _ := json.Marshal(SetupRequest{Username: "", Password: ""})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/setup", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d: %s", w.Code, w.Body.String())
	}
}
