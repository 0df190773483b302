package cluster

import (
	"sort"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/vectormath"
)

// SelectRepresentatives picks the cluster members whose stored embeddings sit
// closest to the cluster centroid. Members whose profile is missing or lacks
// an embedding score -1 and are never selected, so one corrupt record cannot
// abort processing of its cluster. Returns min(count, valid members) ids;
// ties keep the cluster's member order.
func SelectRepresentatives(cluster UserCluster, profiles []store.UserProfile, count int) []string {
	if count <= 0 || len(cluster.MemberUserIDs) == 0 {
		return nil
	}

	byID := make(map[string]*store.UserProfile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	type scored struct {
		id         string
		similarity float64
		valid      bool
	}
	members := make([]scored, 0, len(cluster.MemberUserIDs))
	for _, id := range cluster.MemberUserIDs {
		member := scored{id: id, similarity: -1}
		if profile, ok := byID[id]; ok && profile.InterestEmbedding != nil {
			if sim, err := vectormath.CosineSimilarity(profile.InterestEmbedding, cluster.Centroid); err == nil {
				member.similarity = sim
				member.valid = true
			}
		}
		members = append(members, member)
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].similarity > members[j].similarity
	})

	var selected []string
	for _, member := range members {
		if !member.valid {
			break
		}
		selected = append(selected, member.id)
		if len(selected) == count {
			break
		}
	}
	return selected
}
