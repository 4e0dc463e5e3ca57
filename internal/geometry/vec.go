// Package geometry provides the numeric core of the map reader: triangle apex
// detection, reference axis resolution, bearing calculation and coordinate
// normalization. All inputs are in pixel space (origin top-left, y down).
package geometry

import (
	"errors"
	"image"
	"math"
)

// Errors returned by the geometry stage.
var (
	// ErrDegenerateTriangle is returned when the pointer vertices are collinear
	// or the apex cannot be told apart from another vertex.
	ErrDegenerateTriangle = errors.New("degenerate triangle")
	// ErrDegenerateReference is returned when the reference shape has no
	// well-defined long axis or head.
	ErrDegenerateReference = errors.New("degenerate reference shape")
	// ErrUndefinedOrientation is returned when the tip coincides with the centroid.
	ErrUndefinedOrientation = errors.New("undefined orientation")
)

// Vec is a 2D vector or point with float coordinates.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromPoint converts an integer pixel coordinate to a Vec.
func FromPoint(p image.Point) Vec {
	return Vec{X: float64(p.X), Y: float64(p.Y)}
}

// FromPoints converts a slice of pixel coordinates.
func FromPoints(pts []image.Point) []Vec {
	out := make([]Vec, len(pts))
	for i, p := range pts {
		out[i] = FromPoint(p)
	}
	return out
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product v × o.
func (v Vec) Cross(o Vec) float64 { return v.X*o.Y - v.Y*o.X }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// ToCompass converts a pixel-space vector (y down) into the right-handed
// geometric frame (y up) used for angles and map coordinates. It is the only
// place the axis flip happens.
func ToCompass(v Vec) Vec {
	return Vec{X: v.X, Y: -v.Y}
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// RectFromSize returns the rectangle covering a whole image of the given size.
func RectFromSize(width, height int) Rect {
	return Rect{MaxX: float64(width), MaxY: float64(height)}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
