// Package shape extracts marker outlines from binary colour masks.
package shape

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// ErrShapeNotFound is returned when no region of a mask meets the size and
// shape criteria.
var ErrShapeNotFound = errors.New("shape not found")

// Expectation declares what kind of shape a mask should contain.
type Expectation int

const (
	// Triangle keeps only regions that simplify to exactly three vertices.
	Triangle Expectation = iota
	// DirectionalShape keeps any region regardless of vertex count.
	DirectionalShape
)

// String returns the name of the expectation.
func (e Expectation) String() string {
	switch e {
	case Triangle:
		return "triangle"
	case DirectionalShape:
		return "directional shape"
	default:
		return "unknown"
	}
}

// Params controls contour filtering and simplification.
type Params struct {
	// MinArea is the smallest region, in square pixels, that is not noise.
	MinArea float64 `json:"min_area"`

	// SimplifyRatio is the Douglas-Peucker tolerance as a fraction of the
	// contour perimeter.
	SimplifyRatio float64 `json:"simplify_ratio"`
}

// DefaultParams returns the default extraction parameters.
func DefaultParams() Params {
	return Params{
		MinArea:       50,
		SimplifyRatio: 0.1,
	}
}

// Shape is one connected region of a mask.
type Shape struct {
	// Outline is the raw external boundary.
	Outline []image.Point
	// Polygon is the outline reduced to its dominant corners.
	Polygon []image.Point
	// Area is the area enclosed by Outline.
	Area float64
}

// Vertices returns the number of corners of the simplified polygon.
func (s *Shape) Vertices() int {
	return len(s.Polygon)
}

// Extract returns the best region of mask for the given expectation.
func Extract(mask gocv.Mat, e Expectation, p Params) (*Shape, error) {
	return Select(Candidates(mask, p), e, p.MinArea)
}

// Candidates finds every external contour of mask and simplifies it.
func Candidates(mask gocv.Mat, p Params) []Shape {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	shapes := make([]Shape, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		perimeter := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, p.SimplifyRatio*perimeter, true)

		shapes = append(shapes, Shape{
			Outline: contour.ToPoints(),
			Polygon: approx.ToPoints(),
			Area:    gocv.ContourArea(contour),
		})
		approx.Close()
	}
	return shapes
}

// Select picks the largest candidate that passes the area threshold and, for
// Triangle, has exactly three vertices. Candidates with exactly equal areas
// keep their input order, so the first one found wins.
func Select(candidates []Shape, e Expectation, minArea float64) (*Shape, error) {
	kept := make([]Shape, 0, len(candidates))
	for _, c := range candidates {
		if c.Area < minArea {
			continue
		}
		if e == Triangle && c.Vertices() != 3 {
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no %s among %d regions", ErrShapeNotFound, e, len(candidates))
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Area > kept[j].Area
	})
	best := kept[0]
	return &best, nil
}
