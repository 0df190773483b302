package cluster

import (
	"testing"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
)

func profile(id string, embedding []float32) store.UserProfile {
	return store.UserProfile{ID: id, InterestEmbedding: embedding}
}

func memberSet(cluster UserCluster) map[string]bool {
	set := make(map[string]bool, len(cluster.MemberUserIDs))
	for _, id := range cluster.MemberUserIDs {
		set[id] = true
	}
	return set
}

func TestClusterUsersTwoGroups(t *testing.T) {
	profiles := []store.UserProfile{
		profile("a1", []float32{1, 0, 0}),
		profile("a2", []float32{0.99, 0.05, 0}),
		profile("a3", []float32{0.98, 0.08, 0}),
		profile("b1", []float32{0, 1, 0}),
		profile("b2", []float32{0.05, 0.99, 0}),
		profile("b3", []float32{0.08, 0.98, 0}),
	}

	clusterer := NewClusterer(Config{Epsilon: 0.3, MinSamples: 2, MinClusterSize: 2})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if len(result.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(result.Clusters))
	}
	if result.TotalUsers != 6 {
		t.Fatalf("expected 6 total users, got %d", result.TotalUsers)
	}
	for _, c := range result.Clusters {
		set := memberSet(c)
		if set["a1"] && set["b1"] {
			t.Fatalf("groups merged into one cluster: %v", c.MemberUserIDs)
		}
		if len(c.Centroid) != 3 {
			t.Fatalf("expected 3-dim centroid, got %d", len(c.Centroid))
		}
	}
}

func TestClusterUsersSkipsMissingEmbeddings(t *testing.T) {
	profiles := []store.UserProfile{
		profile("a1", []float32{1, 0}),
		profile("a2", []float32{0.99, 0.05}),
		{ID: "no-embedding"},
	}

	clusterer := NewClusterer(Config{Epsilon: 0.3, MinSamples: 2, MinClusterSize: 2})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if result.TotalUsers != 2 {
		t.Fatalf("expected 2 total users, got %d", result.TotalUsers)
	}
	for _, c := range result.Clusters {
		if memberSet(c)["no-embedding"] {
			t.Fatal("profile without embedding was clustered")
		}
	}
}

func TestClusterUsersNoiseDropped(t *testing.T) {
	profiles := []store.UserProfile{
		profile("a1", []float32{1, 0, 0}),
		profile("a2", []float32{0.99, 0.05, 0}),
		profile("loner", []float32{0, 0, 1}),
	}

	clusterer := NewClusterer(Config{Epsilon: 0.3, MinSamples: 2, MinClusterSize: 2})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if len(result.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(result.Clusters))
	}
	if len(result.NoiseUserIDs) != 1 || result.NoiseUserIDs[0] != "loner" {
		t.Fatalf("expected loner as noise, got %v", result.NoiseUserIDs)
	}
}

func TestClusterUsersNoiseAsSingletons(t *testing.T) {
	// Mutually distant points: everyone is noise under plain DBSCAN.
	profiles := []store.UserProfile{
		profile("u1", []float32{1, 0, 0, 0}),
		profile("u2", []float32{0, 1, 0, 0}),
		profile("u3", []float32{0, 0, 1, 0}),
		profile("u4", []float32{0, 0, 0, 1}),
	}

	clusterer := NewClusterer(Config{Epsilon: 0.3, MinSamples: 2, MinClusterSize: 2, NoiseAsSingletons: true})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if len(result.Clusters) != len(profiles) {
		t.Fatalf("expected %d singleton clusters, got %d", len(profiles), len(result.Clusters))
	}
	seen := make(map[int]bool)
	for _, c := range result.Clusters {
		if len(c.MemberUserIDs) != 1 {
			t.Fatalf("expected singleton, got %v", c.MemberUserIDs)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate cluster id %d", c.ID)
		}
		seen[c.ID] = true
	}
	if len(result.NoiseUserIDs) != 0 {
		t.Fatalf("expected no recorded noise, got %v", result.NoiseUserIDs)
	}
}

func TestClusterUsersMinClusterSizeDemotion(t *testing.T) {
	profiles := []store.UserProfile{
		profile("a1", []float32{1, 0}),
		profile("a2", []float32{0.99, 0.05}),
	}

	clusterer := NewClusterer(Config{Epsilon: 0.3, MinSamples: 2, MinClusterSize: 3})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if len(result.Clusters) != 0 {
		t.Fatalf("expected no clusters below minimum size, got %d", len(result.Clusters))
	}
	if len(result.NoiseUserIDs) != 2 {
		t.Fatalf("expected 2 noise users, got %v", result.NoiseUserIDs)
	}
}

func TestClusterUsersEmptyInput(t *testing.T) {
	clusterer := NewClusterer(Config{})
	result, err := clusterer.ClusterUsers(nil)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if result.TotalUsers != 0 || len(result.Clusters) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestClusterUsersSingletonCentroidIsNormalized(t *testing.T) {
	profiles := []store.UserProfile{profile("u1", []float32{3, 4})}

	clusterer := NewClusterer(Config{NoiseAsSingletons: true})
	result, err := clusterer.ClusterUsers(profiles)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if len(result.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(result.Clusters))
	}
	centroid := result.Clusters[0].Centroid
	if centroid[0] != 0.6 || centroid[1] != 0.8 {
		t.Fatalf("expected normalized centroid, got %v", centroid)
	}
}
