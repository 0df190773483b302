package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
)

type fakeUserStore struct {
	profiles map[string]*store.UserProfile
	cached   map[string][]string
	getErr   error
	saveErr  error
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*store.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeUserStore) UpdateRecommendedEvents(_ context.Context, id string, eventIDs []string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.cached == nil {
		f.cached = make(map[string][]string)
	}
	f.cached[id] = eventIDs
	return nil
}

type fakeEventStore struct {
	events  []store.EventRecord
	listErr error
}

func (f *fakeEventStore) ListEventsWithEmbedding(_ context.Context) ([]store.EventRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEventStore) GetEventsByIDs(_ context.Context, ids []string) ([]store.EventRecord, error) {
	byID := make(map[string]store.EventRecord)
	for _, event := range f.events {
		byID[event.ID] = event
	}
	var out []store.EventRecord
	for _, id := range ids {
		if event, ok := byID[id]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

func testLogger() logging.Logger {
	return logging.NewLoggerWithService("test")
}

func event(id string, embedding []float32, createdAt time.Time) store.EventRecord {
	return store.EventRecord{ID: id, Title: id, Embedding: embedding, CreatedAt: createdAt}
}

func TestRecommendRankingNeverIncreases(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("far", []float32{0, 1}, now),
		event("near", []float32{1, 0}, now),
		event("mid", []float32{0.7, 0.7}, now),
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.Recommend(context.Background(), "user-1", 3)
	if !result.Success {
		t.Fatalf("expected success, got message %q", result.Message)
	}
	if len(result.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(result.Events))
	}
	for i := 1; i < len(result.Scores); i++ {
		if result.Scores[i] > result.Scores[i-1] {
			t.Fatalf("scores increase at %d: %v", i, result.Scores)
		}
	}
	if result.Events[0].ID != "near" {
		t.Fatalf("expected near first, got %s", result.Events[0].ID)
	}
}

func TestRecommendNoEmbedding(t *testing.T) {
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"new-user": {ID: "new-user"},
	}}
	engine := NewEngine(users, &fakeEventStore{}, testLogger())

	result := engine.Recommend(context.Background(), "new-user", 3)
	if result.Success {
		t.Fatal("expected success=false for user without embedding")
	}
	if result.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestRecommendStoreFailureDegrades(t *testing.T) {
	users := &fakeUserStore{getErr: errors.New("connection refused")}
	engine := NewEngine(users, &fakeEventStore{}, testLogger())

	result := engine.Recommend(context.Background(), "user-1", 3)
	if result.Success {
		t.Fatal("expected success=false on store failure")
	}
	if result.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestRecommendKeywordBoost(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {
			ID:                "user-1",
			WeightedInterests: "rock climbing (0.81)",
			InterestEmbedding: []float32{1, 0},
		},
	}}
	// Identical embeddings; the literal keyword match should break the tie.
	events := &fakeEventStore{events: []store.EventRecord{
		event("plain", []float32{1, 0}, now),
		{ID: "boosted", Title: "Rock Climbing Meetup", Embedding: []float32{1, 0}, CreatedAt: now},
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.Recommend(context.Background(), "user-1", 2)
	if result.Events[0].ID != "boosted" {
		t.Fatalf("expected boosted first, got %s", result.Events[0].ID)
	}
	if result.Scores[0] <= result.Scores[1] {
		t.Fatalf("expected boost to raise score: %v", result.Scores)
	}
}

func TestRecommendTiesBrokenByRecency(t *testing.T) {
	old := time.Now().Add(-24 * time.Hour)
	recent := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("older", []float32{1, 0}, old),
		event("newer", []float32{1, 0}, recent),
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.Recommend(context.Background(), "user-1", 2)
	if result.Events[0].ID != "newer" {
		t.Fatalf("expected newer first on tie, got %s", result.Events[0].ID)
	}
}

func TestRefreshCachedPersistsOrderedIDs(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("far", []float32{0, 1}, now),
		event("near", []float32{1, 0}, now),
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.RefreshCached(context.Background(), "user-1", 2)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	cached := users.cached["user-1"]
	if len(cached) != 2 || cached[0] != "near" {
		t.Fatalf("unexpected cached ids: %v", cached)
	}
}

func TestCachedOrComputeServesCache(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {
			ID:                  "user-1",
			InterestEmbedding:   []float32{1, 0},
			RecommendedEventIDs: []string{"cached-event"},
		},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("cached-event", []float32{0, 1}, now),
		event("better-event", []float32{1, 0}, now),
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.CachedOrCompute(context.Background(), "user-1", 2)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if len(result.Events) != 1 || result.Events[0].ID != "cached-event" {
		t.Fatalf("expected cached list, got %v", result.Events)
	}
}

func TestCachedOrComputeFallsBackWhenCacheEmpty(t *testing.T) {
	now := time.Now()
	users := &fakeUserStore{profiles: map[string]*store.UserProfile{
		"user-1": {ID: "user-1", InterestEmbedding: []float32{1, 0}},
	}}
	events := &fakeEventStore{events: []store.EventRecord{
		event("only", []float32{1, 0}, now),
	}}

	engine := NewEngine(users, events, testLogger())
	result := engine.CachedOrCompute(context.Background(), "user-1", 3)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected computed recommendations, got %v", result.Events)
	}
	if users.cached["user-1"] == nil {
		t.Fatal("expected cache to be filled")
	}
}
