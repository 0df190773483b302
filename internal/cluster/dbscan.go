package cluster

import (
	"github.com/BrooksFlannery/who-all2-sub001/pkg/vectormath"
)

// noiseLabel marks points not assigned to any cluster.
const noiseLabel = -1

// dbscan assigns an integer cluster label to every point, with noiseLabel for
// points in sparse regions. Points are expected to be L2-normalized so that
// Euclidean distance tracks cosine distance. Labels are stable for a fixed
// input order; their numeric values carry no meaning across runs.
func dbscan(points [][]float32, epsilon float64, minPoints int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, len(points))

	nextLabel := 0
	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, epsilon)
		if len(neighbors) < minPoints {
			continue
		}

		labels[i] = nextLabel
		expandCluster(points, labels, visited, neighbors, nextLabel, epsilon, minPoints)
		nextLabel++
	}
	return labels
}

func expandCluster(points [][]float32, labels []int, visited []bool, seeds []int, label int, epsilon float64, minPoints int) {
	for cursor := 0; cursor < len(seeds); cursor++ {
		idx := seeds[cursor]
		if labels[idx] == noiseLabel {
			labels[idx] = label
		}
		if visited[idx] {
			continue
		}
		visited[idx] = true

		neighbors := regionQuery(points, idx, epsilon)
		if len(neighbors) >= minPoints {
			seeds = append(seeds, neighbors...)
		}
	}
}

// regionQuery returns the indices of all points within epsilon of point i,
// including i itself.
func regionQuery(points [][]float32, i int, epsilon float64) []int {
	var neighbors []int
	for j := range points {
		d, err := vectormath.EuclideanDistance(points[i], points[j])
		if err != nil {
			continue
		}
		if d <= epsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
