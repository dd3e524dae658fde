package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"

	"github.com/gin-gonic/gin"
)

func directionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/directions", ListDirectionsHandler())
	r.POST("/directions", CreateDirectionHandler())
	r.GET("/directions/:id", GetDirectionHandler())
	r.PUT("/directions/:id", UpdateDirectionHandler())
	r.DELETE("/directions/:id", DeleteDirectionHandler())
	r.GET("/directions/:id/skill-points", ListDirectionSkillPointsHandler())
	return r
}

func TestCreateDirectionHandler(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	r := directionRouter()

	payload := DirectionRequest{Name: "Distributed Systems", Stage: "attack"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/directions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var created direction.Direction
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode direction: %v", err)
	}
	if created.Name != "Distributed Systems" || created.Stage != direction.StageAttack {
		t.Errorf("created direction = %+v", created)
	}
}

func TestCreateDirectionHandler_RejectsUnknownStage(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	r := directionRouter()

	b, _ := json.Marshal(DirectionRequest{Name: "Bad Stage", Stage: "sprint"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/directions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDirectionCRUDFlow(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	r := directionRouter()

	d, err := direction.NewRepository(db.DB).Create("Databases", direction.StageShape, nil)
	if err != nil {
		t.Fatalf("failed to seed direction: %v", err)
	}

	// Get
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/directions/"+d.ID.String(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	// Update the stage
	b, _ := json.Marshal(map[string]string{"stage": "stabilize"})
	w = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/directions/"+d.ID.String(), bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "stabilize") {
		t.Errorf("update response should carry the new stage, got: %s", w.Body.String())
	}

	// List
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/directions", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !contains(w.Body.String(), "Databases") {
		t.Fatalf("list: expected the direction back, got %d: %s", w.Code, w.Body.String())
	}

	// Delete, then 404 on the re-read
	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/directions/"+d.ID.String(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/directions/"+d.ID.String(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListDirectionSkillPointsHandler(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	r := directionRouter()

	d, err := direction.NewRepository(db.DB).Create("Go Internals", direction.StageExplore, nil)
	if err != nil {
		t.Fatalf("failed to seed direction: %v", err)
	}
	if _, err := skillpoint.NewRepository(db.DB).Create(d.ID, "Scheduler", nil, skillpoint.LevelEmerging); err != nil {
		t.Fatalf("failed to seed skill point: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/directions/"+d.ID.String()+"/skill-points", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "Scheduler") {
		t.Errorf("expected the skill point in the response, got: %s", w.Body.String())
	}
}
