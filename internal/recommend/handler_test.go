package recommend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
)

func setupRouter(engine *Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := &Handler{Engine: engine, Logger: testLogger()}
	handler.RegisterRoutes(router)
	return router
}

func TestHandleGetRecommendations(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("near", []float32{1, 0}, now),
	}}
	router := setupRouter(NewEngine(users, events, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp recommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got message %q", resp.Message)
	}
	if len(resp.Events) != 1 || resp.Events[0].ID != "near" {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
}

func TestHandleGetRecommendationsNewUser(t *testing.T) {
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"new-user": {ID: "new-user"},
	}}
	router := setupRouter(NewEngine(users, &fakeEventStore{}, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/new-user", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// A user without an embedding is a steady state, not an error status.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp recommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestHandleRefreshRecommendations(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("near", []float32{1, 0}, now),
		event("far", []float32{0, 1}, now),
	}}
	engine := NewEngine(users, events, testLogger())
	router := setupRouter(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/user-1/refresh?k=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cached := users.cached["user-1"]; len(cached) != 1 || cached[0] != "near" {
		t.Fatalf("expected refreshed cache, got %v", cached)
	}
}

func TestParseKBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query string
		want  int
	}{
		{"", DefaultK},
		{"k=5", 5},
		{"k=0", DefaultK},
		{"k=999", DefaultK},
		{"k=abc", DefaultK},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		if got := parseK(c); got != tc.want {
			t.Fatalf("query %q: expected %d, got %d", tc.query, tc.want, got)
		}
	}
}
