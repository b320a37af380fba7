package detection

import "github.com/bits-and-blooms/bitset"

// Cluster is a group of matched points collected around a seed.
//
// Members[0] is always the seed. Every member lies strictly within the
// grouping threshold of the seed on both axes; members are not required to be
// close to each other.
type Cluster struct {
	Seed    Point   `json:"seed"`
	Members []Point `json:"members"`
}

// Group partitions points into clusters using greedy seed-based grouping.
//
// Points are visited in slice order. Each unvisited point becomes a seed and
// claims every other unvisited point p with
//
//	|p.X - seed.X| < threshold && |p.Y - seed.Y| < threshold
//
// scanning the whole slice, including points after the seed. Claimed points are
// never reconsidered, and proximity to a non-seed member does not matter, so
// the grouping is not transitive:
//
//	threshold 15, points x = 0, 10, 20 on one row
//	  cluster 1: {0, 10}   (|10-0| = 10 < 15, |20-0| = 20 >= 15)
//	  cluster 2: {20}
//
// Every point ends up in exactly one cluster. The pass is O(n²) in the number
// of points, which the sampling stride keeps small.
func Group(points []Point, threshold int) []Cluster {
	if len(points) == 0 {
		return nil
	}

	visited := bitset.New(uint(len(points)))
	var clusters []Cluster

	for i, seed := range points {
		if visited.Test(uint(i)) {
			continue
		}
		visited.Set(uint(i))
		members := []Point{seed}

		for j, p := range points {
			if visited.Test(uint(j)) {
				continue
			}
			if abs(p.X-seed.X) < threshold && abs(p.Y-seed.Y) < threshold {
				visited.Set(uint(j))
				members = append(members, p)
			}
		}

		clusters = append(clusters, Cluster{Seed: seed, Members: members})
	}

	return clusters
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
