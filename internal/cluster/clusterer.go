package cluster

import (
	"fmt"
	"sort"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/vectormath"
)

// UserCluster is one density cluster of users. It lives only for the duration
// of a generation run.
type UserCluster struct {
	ID            int
	MemberUserIDs []string
	Centroid      []float32
}

// Clustering is the outcome of one clustering pass over all profiles.
type Clustering struct {
	Clusters     []UserCluster
	NoiseUserIDs []string
	// TotalUsers counts profiles that had an embedding and were clustered.
	TotalUsers int
}

type Config struct {
	// Epsilon is the neighborhood radius over normalized embeddings.
	Epsilon float64
	// MinSamples is the density threshold for a core point.
	MinSamples int
	// MinClusterSize demotes clusters smaller than this to noise.
	MinClusterSize int
	// NoiseAsSingletons turns every noise point into a size-1 cluster so
	// low-population deployments still generate a proposal per user.
	NoiseAsSingletons bool
	Logger            logging.Logger
}

type Clusterer struct {
	config Config
	logger logging.Logger
}

func NewClusterer(config Config) *Clusterer {
	if config.Epsilon <= 0 {
		config.Epsilon = 0.35
	}
	if config.MinSamples <= 0 {
		config.MinSamples = 2
	}
	if config.MinClusterSize <= 0 {
		config.MinClusterSize = 2
	}
	return &Clusterer{config: config, logger: config.Logger}
}

// ClusterUsers groups profiles with a present interest embedding into density
// clusters. Profiles without an embedding are ignored entirely; they are
// neither clustered nor counted as noise.
func (c *Clusterer) ClusterUsers(profiles []store.UserProfile) (*Clustering, error) {
	var ids []string
	var normalized [][]float32
	for _, profile := range profiles {
		if profile.InterestEmbedding == nil {
			continue
		}
		ids = append(ids, profile.ID)
		normalized = append(normalized, vectormath.Normalize(profile.InterestEmbedding))
	}

	result := &Clustering{TotalUsers: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	labels := dbscan(normalized, c.config.Epsilon, c.config.MinSamples)

	members := make(map[int][]int)
	var noise []int
	for i, label := range labels {
		if label == noiseLabel {
			noise = append(noise, i)
			continue
		}
		members[label] = append(members[label], i)
	}

	// Clusters below the minimum size count as noise.
	labelsInUse := make([]int, 0, len(members))
	for label, idxs := range members {
		if len(idxs) < c.config.MinClusterSize {
			noise = append(noise, idxs...)
			continue
		}
		labelsInUse = append(labelsInUse, label)
	}
	sort.Ints(labelsInUse)
	sort.Ints(noise)

	// Labels are renumbered sequentially; raw label values are not stable
	// across runs anyway.
	for seq, label := range labelsInUse {
		cluster, err := buildCluster(seq, members[label], ids, normalized)
		if err != nil {
			return nil, err
		}
		result.Clusters = append(result.Clusters, cluster)
	}

	if c.config.NoiseAsSingletons {
		nextID := len(labelsInUse)
		for _, idx := range noise {
			result.Clusters = append(result.Clusters, UserCluster{
				ID:            nextID,
				MemberUserIDs: []string{ids[idx]},
				Centroid:      normalized[idx],
			})
			nextID++
		}
	} else {
		for _, idx := range noise {
			result.NoiseUserIDs = append(result.NoiseUserIDs, ids[idx])
		}
	}

	if c.logger != nil {
		c.logger.WithFields(logging.Fields{
			"users":    result.TotalUsers,
			"clusters": len(result.Clusters),
			"noise":    len(result.NoiseUserIDs),
		}).Info("Clustered user interest embeddings")
	}
	return result, nil
}

func buildCluster(label int, idxs []int, ids []string, normalized [][]float32) (UserCluster, error) {
	memberIDs := make([]string, 0, len(idxs))
	vectors := make([][]float32, 0, len(idxs))
	for _, idx := range idxs {
		memberIDs = append(memberIDs, ids[idx])
		vectors = append(vectors, normalized[idx])
	}

	centroid, err := vectormath.Centroid(vectors)
	if err != nil {
		return UserCluster{}, fmt.Errorf("centroid for cluster %d: %w", label, err)
	}
	return UserCluster{ID: label, MemberUserIDs: memberIDs, Centroid: centroid}, nil
}
