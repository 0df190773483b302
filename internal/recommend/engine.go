package recommend

import (
	"context"
	"sort"
	"strings"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/vectormath"
)

const (
	// DefaultK is how many events a request gets when it does not ask for a
	// specific count.
	DefaultK = 3
	// keywordBoostWeight scales the literal keyword-overlap score added on
	// top of the embedding similarity. Kept well below 1 so embeddings stay
	// the primary signal.
	keywordBoostWeight = 0.15

	noEmbeddingMessage = "We don't know your interests well enough yet. Keep chatting and recommendations will appear here."
	unavailableMessage = "Recommendations are temporarily unavailable. Please try again shortly."
	noEventsMessage    = "No events to recommend right now. Check back soon."
)

// Result is the envelope every recommendation call returns. Failures are
// reported through Success and Message, never as an error.
type Result struct {
	Success bool
	Events  []store.EventRecord
	// Scores aligns with Events; final blended score per event.
	Scores  []float64
	Message string
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.UserProfile, error)
	UpdateRecommendedEvents(ctx context.Context, id string, eventIDs []string) error
}

type EventStore interface {
	ListEventsWithEmbedding(ctx context.Context) ([]store.EventRecord, error)
	GetEventsByIDs(ctx context.Context, ids []string) ([]store.EventRecord, error)
}

type Engine struct {
	users  UserStore
	events EventStore
	logger logging.Logger
}

func NewEngine(users UserStore, events EventStore, logger logging.Logger) *Engine {
	return &Engine{users: users, events: events, logger: logger}
}

// Recommend ranks all scorable events for a user and returns the top k.
// Safe for concurrent use across users.
func (e *Engine) Recommend(ctx context.Context, userID string, k int) Result {
	result, _ := e.rank(ctx, userID, k)
	return result
}

// RefreshCached recomputes recommendations and persists the ordered event id
// list on the profile so later views render without recomputation.
func (e *Engine) RefreshCached(ctx context.Context, userID string, k int) Result {
	result, _ := e.rank(ctx, userID, k)
	if !result.Success {
		return result
	}

	ids := make([]string, len(result.Events))
	for i, event := range result.Events {
		ids[i] = event.ID
	}
	if err := e.users.UpdateRecommendedEvents(ctx, userID, ids); err != nil {
		e.logger.WithFields(logging.Fields{"user_id": userID, "error": err}).Warn("Failed to persist recommendation cache")
	}
	return result
}

// CachedOrCompute serves the persisted recommendation list when one exists,
// falling back to a fresh computation (which also fills the cache) when the
// profile has none.
func (e *Engine) CachedOrCompute(ctx context.Context, userID string, k int) Result {
	profile, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return e.unavailable(userID, "load profile", err)
	}

	if len(profile.RecommendedEventIDs) > 0 {
		events, err := e.events.GetEventsByIDs(ctx, profile.RecommendedEventIDs)
		if err != nil {
			return e.unavailable(userID, "resolve cached events", err)
		}
		if len(events) > 0 {
			return Result{Success: true, Events: events}
		}
	}
	return e.RefreshCached(ctx, userID, k)
}

func (e *Engine) rank(ctx context.Context, userID string, k int) (Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	profile, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return e.unavailable(userID, "load profile", err), err
	}
	if profile.InterestEmbedding == nil {
		return Result{Success: false, Message: noEmbeddingMessage}, nil
	}

	events, err := e.events.ListEventsWithEmbedding(ctx)
	if err != nil {
		return e.unavailable(userID, "list events", err), err
	}
	if len(events) == 0 {
		return Result{Success: false, Message: noEventsMessage}, nil
	}

	keywords := store.SummaryKeywords(profile.WeightedInterests)

	type scored struct {
		event store.EventRecord
		score float64
	}
	ranked := make([]scored, 0, len(events))
	for _, event := range events {
		similarity, err := vectormath.CosineSimilarity(profile.InterestEmbedding, event.Embedding)
		if err != nil {
			e.logger.WithFields(logging.Fields{"event_id": event.ID, "error": err}).Warn("Skipping event with incompatible embedding")
			continue
		}
		score := similarity + keywordBoostWeight*keywordOverlap(keywords, event)
		ranked = append(ranked, scored{event: event, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].event.CreatedAt.After(ranked[j].event.CreatedAt)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	result := Result{Success: true}
	for _, entry := range ranked {
		result.Events = append(result.Events, entry.event)
		result.Scores = append(result.Scores, entry.score)
	}
	recommendationsServed.Inc()
	return result, nil
}

func (e *Engine) unavailable(userID, action string, err error) Result {
	e.logger.WithFields(logging.Fields{"user_id": userID, "error": err}).Warn("Recommendation degraded: " + action)
	recommendationFailures.Inc()
	return Result{Success: false, Message: unavailableMessage}
}

// keywordOverlap counts the fraction of the user's interest keywords that
// literally appear in the event's text, rewarding exact matches embeddings
// can under-weight, like rare proper nouns.
func keywordOverlap(keywords []string, event store.EventRecord) float64 {
	if len(keywords) == 0 {
		return 0
	}

	haystack := strings.ToLower(event.Title + " " + event.Description + " " + strings.Join(event.Categories, " "))
	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}
