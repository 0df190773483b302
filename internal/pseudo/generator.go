package pseudo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/BrooksFlannery/who-all2-sub001/internal/cluster"
	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/llm"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/vectormath"
)

const (
	// DefaultCandidateCount is how many event concepts get generated per
	// cluster before scoring.
	DefaultCandidateCount = 5
	// DefaultRepresentativeCount is how many cluster members feed the
	// generation prompt.
	DefaultRepresentativeCount = 2
	// DefaultRadiusMeters bounds the target area around the computed center.
	DefaultRadiusMeters = 10000
	// DefaultVenueType is used when venue-type inference yields nothing.
	DefaultVenueType = "event venue"
)

// DefaultLocation is where proposals land when no cluster member has shared
// a location (downtown Austin, TX).
var DefaultLocation = store.LatLng{Lat: 30.2672, Lng: -97.7431}

// TargetLocation is the area a proposal is aimed at.
type TargetLocation struct {
	Center       store.LatLng `json:"center"`
	RadiusMeters int          `json:"radius_meters"`
}

// PseudoEvent is a synthesized proposal for one cluster. It is never
// persisted; the venue-materialization step turns it into a real event or
// discards it.
type PseudoEvent struct {
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Categories           []string       `json:"categories,omitempty"`
	TargetLocation       TargetLocation `json:"target_location"`
	VenueTypeQuery       string         `json:"venue_type_query"`
	SourceClusterUserIDs []string       `json:"source_cluster_user_ids"`
	CentroidUserIDs      []string       `json:"centroid_user_ids"`
	ClusterID            int            `json:"cluster_id"`
}

// Stats summarizes one batch run for the caller deciding whether to proceed
// to materialization.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	ClusteredUsers int `json:"clustered_users"`
	NoiseUsers     int `json:"noise_users"`
	ClusterCount   int `json:"cluster_count"`
	EventCount     int `json:"event_count"`
}

// BatchResult is the outcome of one generation run. Success means no cluster
// failed; partial output is still returned when some did.
type BatchResult struct {
	Success      bool          `json:"success"`
	PseudoEvents []PseudoEvent `json:"pseudo_events"`
	Errors       []string      `json:"errors,omitempty"`
	Stats        Stats         `json:"stats"`
}

type UserLister interface {
	ListUsersWithEmbedding(ctx context.Context) ([]store.UserProfile, error)
}

type Config struct {
	Users     UserLister
	Clusterer *cluster.Clusterer
	Embedder  llm.EmbeddingClient
	// Provider generates candidate event concepts.
	Provider llm.Provider
	// VenueProvider infers venue types; falls back to Provider when nil.
	VenueProvider       llm.Provider
	Logger              logging.Logger
	CandidateCount      int
	RepresentativeCount int
	// Concurrency bounds parallel cluster processing. 1 means strictly
	// sequential, which keeps provider rate limits and cost predictable.
	Concurrency int
}

type Generator struct {
	config Config
	logger logging.Logger
}

func NewGenerator(config Config) (*Generator, error) {
	if config.Users == nil {
		return nil, errors.New("user lister is required")
	}
	if config.Clusterer == nil {
		return nil, errors.New("clusterer is required")
	}
	if config.Embedder == nil {
		return nil, errors.New("embedding client is required")
	}
	if config.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if config.VenueProvider == nil {
		config.VenueProvider = config.Provider
	}
	if config.CandidateCount <= 0 {
		config.CandidateCount = DefaultCandidateCount
	}
	if config.RepresentativeCount <= 0 {
		config.RepresentativeCount = DefaultRepresentativeCount
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Generator{config: config, logger: config.Logger}, nil
}

// GenerateAll runs the full pipeline: cluster all embedded users, then
// synthesize one proposal per cluster. A cluster failure is recorded and the
// batch continues; cancellation stops before the next cluster and keeps
// results already produced.
func (g *Generator) GenerateAll(ctx context.Context) BatchResult {
	result := BatchResult{}

	profiles, err := g.config.Users.ListUsersWithEmbedding(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list users: %v", err))
		return result
	}

	clustering, err := g.config.Clusterer.ClusterUsers(profiles)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cluster users: %v", err))
		return result
	}

	result.Stats.TotalUsers = clustering.TotalUsers
	result.Stats.NoiseUsers = len(clustering.NoiseUserIDs)
	result.Stats.ClusteredUsers = clustering.TotalUsers - len(clustering.NoiseUserIDs)
	result.Stats.ClusterCount = len(clustering.Clusters)

	if g.config.Concurrency > 1 {
		g.runParallel(ctx, clustering.Clusters, profiles, &result)
	} else {
		g.runSequential(ctx, clustering.Clusters, profiles, &result)
	}

	result.Stats.EventCount = len(result.PseudoEvents)
	result.Success = len(result.Errors) == 0

	if g.logger != nil {
		g.logger.WithFields(logging.Fields{
			"clusters": result.Stats.ClusterCount,
			"events":   result.Stats.EventCount,
			"errors":   len(result.Errors),
		}).Info("Pseudo-event generation batch finished")
	}
	return result
}

func (g *Generator) runSequential(ctx context.Context, clusters []cluster.UserCluster, profiles []store.UserProfile, result *BatchResult) {
	for _, c := range clusters {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cluster %d: %v", c.ID, ctx.Err()))
			return
		}
		event, err := g.generateForCluster(ctx, c, profiles)
		if err != nil {
			g.recordFailure(result, c.ID, err)
			continue
		}
		result.PseudoEvents = append(result.PseudoEvents, *event)
		clustersProcessed.WithLabelValues("completed").Inc()
	}
}

func (g *Generator) runParallel(ctx context.Context, clusters []cluster.UserCluster, profiles []store.UserProfile, result *BatchResult) {
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.config.Concurrency)

	for _, c := range clusters {
		c := c
		group.Go(func() error {
			if groupCtx.Err() != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("cluster %d: %v", c.ID, groupCtx.Err()))
				mu.Unlock()
				return nil
			}
			event, err := g.generateForCluster(groupCtx, c, profiles)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.recordFailure(result, c.ID, err)
				return nil
			}
			result.PseudoEvents = append(result.PseudoEvents, *event)
			clustersProcessed.WithLabelValues("completed").Inc()
			return nil
		})
	}
	_ = group.Wait()
}

func (g *Generator) recordFailure(result *BatchResult, clusterID int, err error) {
	result.Errors = append(result.Errors, fmt.Sprintf("cluster %d: %v", clusterID, err))
	clustersProcessed.WithLabelValues("failed").Inc()
	if g.logger != nil {
		g.logger.WithFields(logging.Fields{"cluster_id": clusterID, "error": err}).Warn("Cluster generation failed")
	}
}

// generateForCluster runs the per-cluster steps in strict order: select
// representatives, generate candidates, embed and score them against the
// whole cluster, pick the best, compute a target location, infer a venue
// type, emit the proposal.
func (g *Generator) generateForCluster(ctx context.Context, c cluster.UserCluster, profiles []store.UserProfile) (*PseudoEvent, error) {
	byID := make(map[string]*store.UserProfile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	representatives := cluster.SelectRepresentatives(c, profiles, g.config.RepresentativeCount)
	if len(representatives) == 0 {
		return nil, errors.New("no representatives with embeddings")
	}

	var interests []string
	for _, id := range representatives {
		if profile := byID[id]; profile != nil && profile.WeightedInterests != "" {
			interests = append(interests, profile.WeightedInterests)
		}
	}
	if len(interests) == 0 {
		return nil, errors.New("representatives have no interest summaries")
	}

	candidates, err := g.generateCandidates(ctx, interests)
	if err != nil {
		return nil, err
	}

	best, err := g.scoreAndSelect(ctx, candidates, c, byID)
	if err != nil {
		return nil, err
	}

	venueType, err := g.inferVenueType(ctx, best.Description)
	if err != nil {
		if g.logger != nil {
			g.logger.WithFields(logging.Fields{"cluster_id": c.ID, "error": err}).Warn("Venue inference failed, using default")
		}
		venueType = DefaultVenueType
	}

	return &PseudoEvent{
		Title:                best.Title,
		Description:          best.Description,
		TargetLocation:       TargetLocation{Center: clusterLocation(c, byID), RadiusMeters: DefaultRadiusMeters},
		VenueTypeQuery:       venueType,
		SourceClusterUserIDs: append([]string(nil), c.MemberUserIDs...),
		CentroidUserIDs:      representatives,
		ClusterID:            c.ID,
	}, nil
}

func (g *Generator) generateCandidates(ctx context.Context, interests []string) ([]Candidate, error) {
	raw, err := llm.CompleteText(ctx, g.config.Provider, []llm.Message{
		{Role: "system", Content: generationSystemPrompt},
		{Role: "user", Content: buildGenerationPrompt(interests, g.config.CandidateCount)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	candidates := ParseCandidates(raw)
	if len(candidates) == 0 {
		return nil, errors.New("no candidates parsed from generated output")
	}
	if len(candidates) > g.config.CandidateCount {
		candidates = candidates[:g.config.CandidateCount]
	}
	return candidates, nil
}

// scoreAndSelect embeds every candidate description and ranks candidates by
// mean similarity to all cluster member embeddings, not just the
// representatives'. Ties keep generation order.
func (g *Generator) scoreAndSelect(ctx context.Context, candidates []Candidate, c cluster.UserCluster, byID map[string]*store.UserProfile) (*Candidate, error) {
	descriptions := make([]string, len(candidates))
	for i, candidate := range candidates {
		descriptions[i] = candidate.Description
	}

	embeddings, err := g.config.Embedder.Embed(ctx, descriptions)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(embeddings) != len(candidates) {
		return nil, fmt.Errorf("embed candidates: got %d embeddings for %d inputs", len(embeddings), len(candidates))
	}

	var memberEmbeddings [][]float32
	for _, id := range c.MemberUserIDs {
		if profile := byID[id]; profile != nil && profile.InterestEmbedding != nil {
			memberEmbeddings = append(memberEmbeddings, profile.InterestEmbedding)
		}
	}
	if len(memberEmbeddings) == 0 {
		return nil, errors.New("cluster has no member embeddings")
	}

	bestIdx := -1
	bestScore := 0.0
	for i, embedding := range embeddings {
		total := 0.0
		counted := 0
		for _, member := range memberEmbeddings {
			sim, err := vectormath.CosineSimilarity(embedding, member)
			if err != nil {
				continue
			}
			total += sim
			counted++
		}
		if counted == 0 {
			continue
		}
		score := total / float64(counted)
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx == -1 {
		return nil, errors.New("no candidate could be scored")
	}

	candidateScores.Observe(bestScore)
	return &candidates[bestIdx], nil
}

func (g *Generator) inferVenueType(ctx context.Context, description string) (string, error) {
	raw, err := llm.CompleteText(ctx, g.config.VenueProvider, []llm.Message{
		{Role: "system", Content: venueSystemPrompt},
		{Role: "user", Content: buildVenuePrompt([]string{description})},
	})
	if err != nil {
		return "", err
	}
	venueTypes := ParseVenueTypes(raw, 1, DefaultVenueType)
	return venueTypes[0], nil
}

// clusterLocation averages the locations of members that have one, falling
// back to DefaultLocation when none do.
func clusterLocation(c cluster.UserCluster, byID map[string]*store.UserProfile) store.LatLng {
	var lat, lng float64
	located := 0
	for _, id := range c.MemberUserIDs {
		if profile := byID[id]; profile != nil && profile.Location != nil {
			lat += profile.Location.Lat
			lng += profile.Location.Lng
			located++
		}
	}
	if located == 0 {
		return DefaultLocation
	}
	return store.LatLng{Lat: lat / float64(located), Lng: lng / float64(located)}
}
