package geometry

import (
	"fmt"
	"sort"
)

// TriangleConfig holds the tolerances used when analysing the pointer triangle.
type TriangleConfig struct {
	// CollinearRatio is the minimum value of 2*area / longestEdge² below which
	// the three vertices are treated as collinear.
	CollinearRatio float64 `json:"collinear_ratio"`

	// ApexTolerance is the minimum relative gap between the shortest and the
	// second shortest edge. Smaller gaps make the apex ambiguous.
	ApexTolerance float64 `json:"apex_tolerance"`
}

// DefaultTriangleConfig returns tolerances suited to anti-aliased markers.
func DefaultTriangleConfig() TriangleConfig {
	return TriangleConfig{
		CollinearRatio: 0.02,
		ApexTolerance:  0.1,
	}
}

// Triangle is the result of analysing a 3-vertex pointer polygon.
type Triangle struct {
	Vertices [3]Vec `json:"vertices"`
	Centroid Vec    `json:"centroid"`
	Tip      Vec    `json:"tip"`
	// Base is the midpoint of the edge opposite the tip.
	Base Vec `json:"base"`
}

// AnalyzeTriangle computes the centroid and apex of a triangle.
//
// The apex is the vertex whose opposite edge is the shortest, which matches an
// isosceles arrowhead with a short base. Collinear vertices and near-equilateral
// shapes, where the two shortest edges are within ApexTolerance of each other,
// return ErrDegenerateTriangle.
func AnalyzeTriangle(v [3]Vec, cfg TriangleConfig) (Triangle, error) {
	// opposite[i] is the length of the edge not touching vertex i.
	var opposite [3]float64
	for i := 0; i < 3; i++ {
		opposite[i] = v[(i+1)%3].Sub(v[(i+2)%3]).Len()
	}

	longest := max(opposite[0], opposite[1], opposite[2])
	if longest == 0 {
		return Triangle{}, fmt.Errorf("%w: coincident vertices", ErrDegenerateTriangle)
	}

	doubleArea := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	if doubleArea < 0 {
		doubleArea = -doubleArea
	}
	if doubleArea/(longest*longest) < cfg.CollinearRatio {
		return Triangle{}, fmt.Errorf("%w: vertices are collinear", ErrDegenerateTriangle)
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(a, b int) bool {
		return opposite[order[a]] < opposite[order[b]]
	})
	shortest, second := opposite[order[0]], opposite[order[1]]
	if (second-shortest)/second < cfg.ApexTolerance {
		return Triangle{}, fmt.Errorf("%w: apex is ambiguous (edges %.2f and %.2f)",
			ErrDegenerateTriangle, shortest, second)
	}

	apex := order[0]
	t := Triangle{
		Vertices: v,
		Centroid: v[0].Add(v[1]).Add(v[2]).Scale(1.0 / 3.0),
		Tip:      v[apex],
		Base:     v[(apex+1)%3].Add(v[(apex+2)%3]).Scale(0.5),
	}
	return t, nil
}
