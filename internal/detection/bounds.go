package detection

// Result is the bounding box of one cluster.
//
// The rectangle is inclusive of its extreme members: X and Y are the minimum
// member coordinates and Width/Height are max - min, so a single-point cluster
// reports Width = Height = 0.
type Result struct {
	X      int `json:"x"`      // Left edge (minimum member X)
	Y      int `json:"y"`      // Top edge (minimum member Y)
	Width  int `json:"width"`  // maxX - minX
	Height int `json:"height"` // maxY - minY
	Count  int `json:"count"`  // Number of members, always >= 1
}

// Contains reports whether p lies inside the inclusive rectangle.
func (r Result) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the rectangle's centre, rounded down.
func (r Result) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Bound computes the minimal enclosing rectangle of c's members.
func Bound(c Cluster) Result {
	minX, minY := c.Seed.X, c.Seed.Y
	maxX, maxY := minX, minY
	for _, p := range c.Members {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return Result{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
		Count:  len(c.Members),
	}
}

// Aggregate bounds every cluster, in cluster order.
//
// No size or count filtering is applied. The returned slice is never nil.
func Aggregate(clusters []Cluster) []Result {
	results := make([]Result, 0, len(clusters))
	for _, c := range clusters {
		results = append(results, Bound(c))
	}
	return results
}
