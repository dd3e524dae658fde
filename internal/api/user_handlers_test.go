package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-recall/internal/config"
	"go-recall/internal/db"
	"go-recall/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func setupRedis() *redis.Client {
	// Use redis.NewClient with a dummy config, but do NOT rely on real Redis for handler tests.
	return redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
}

func seedOwner(t *testing.T, username, password string) user.User {
	t.Helper()
	hash, err := user.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := user.User{Username: username, PasswordHash: hash, Role: user.RoleOwner, CreatedAt: time.Now()}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func TestLoginHandler_NeedSetup(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	rdb := setupRedis()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, rdb))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte(`{"username":"a","password":"b"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden for initial setup required, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "need_setup") {
		t.Errorf("response should flag need_setup, got: %s", w.Body.String())
	}
}

func TestLoginHandler_InvalidPassword(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	u := seedOwner(t, "owner", "rightpw")
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	rdb := setupRedis()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, rdb))
	payload := map[string]string{"username": u.Username, "password": "wrongpw"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized for bad password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginHandler_Success(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	u := seedOwner(t, "owner", "mypw")
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	rdb := setupRedis()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, rdb))
	payload := map[string]string{"username": u.Username, "password": "mypw"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a JWT in the login response")
	}
	if resp.Username != u.Username || resp.UserID != u.ID {
		t.Errorf("login response = %+v, want user %s (%d)", resp, u.Username, u.ID)
	}
}
