package geometry

import (
	"fmt"
	"math"
)

// ReferenceConfig controls how the north axis is derived from the reference shape.
type ReferenceConfig struct {
	// MinAspectRatio is the minimum ratio between the long and short axis of
	// the shape. Rounder shapes have no usable direction.
	MinAspectRatio float64 `json:"min_aspect_ratio"`

	// HeadTolerance is the minimum relative difference between the taper of
	// the two ends of a non-triangular shape.
	HeadTolerance float64 `json:"head_tolerance"`

	// AssumeNorthUp skips reference detection and uses image "up" as north.
	AssumeNorthUp bool `json:"assume_north_up"`
}

// DefaultReferenceConfig returns the default reference settings.
func DefaultReferenceConfig() ReferenceConfig {
	return ReferenceConfig{
		MinAspectRatio: 1.2,
		HeadTolerance:  0.05,
	}
}

// NorthUp is pixel-space "up".
var NorthUp = Vec{X: 0, Y: -1}

// Moments holds the area, centroid and central second moments of a polygon.
type Moments struct {
	Area     float64
	Centroid Vec
	Mu20     float64
	Mu02     float64
	Mu11     float64
}

// PolygonMoments computes the exact moments of the region enclosed by a
// closed polygon, independent of vertex winding.
func PolygonMoments(poly []Vec) Moments {
	var a, cx, cy, sxx, syy, sxy float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		c := p.Cross(q)
		a += c
		cx += (p.X + q.X) * c
		cy += (p.Y + q.Y) * c
		sxx += (p.X*p.X + p.X*q.X + q.X*q.X) * c
		syy += (p.Y*p.Y + p.Y*q.Y + q.Y*q.Y) * c
		sxy += (p.X*q.Y + 2*p.X*p.Y + 2*q.X*q.Y + q.X*p.Y) * c
	}
	a /= 2
	if a == 0 {
		return Moments{}
	}

	m := Moments{Area: math.Abs(a)}
	m.Centroid = Vec{X: cx / (6 * a), Y: cy / (6 * a)}
	m.Mu20 = sxx/(12*a) - m.Centroid.X*m.Centroid.X
	m.Mu02 = syy/(12*a) - m.Centroid.Y*m.Centroid.Y
	m.Mu11 = sxy/(24*a) - m.Centroid.X*m.Centroid.Y
	return m
}

// PrincipalAxis returns the unit direction of largest spread and the ratio
// between the long and short axis lengths. The sign of the axis is arbitrary.
func (m Moments) PrincipalAxis() (Vec, float64) {
	half := (m.Mu20 + m.Mu02) / 2
	diff := math.Hypot((m.Mu20-m.Mu02)/2, m.Mu11)
	major, minor := half+diff, half-diff

	theta := 0.5 * math.Atan2(2*m.Mu11, m.Mu20-m.Mu02)
	axis := Vec{X: math.Cos(theta), Y: math.Sin(theta)}

	if minor <= 0 {
		return axis, math.Inf(1)
	}
	return axis, math.Sqrt(major / minor)
}

// ResolveNorth derives the unit north vector from the reference shape.
//
// outline is the raw boundary of the shape and polygon its simplified form.
// The principal axis of the outline gives the line of the arrow. A triangular
// polygon is oriented toward its apex. Any other shape is oriented toward the
// end of the axis that tapers the most, which is the pointed end of an arrow
// with or without a shaft.
func ResolveNorth(outline, polygon []Vec, tri TriangleConfig, cfg ReferenceConfig) (Vec, error) {
	if cfg.AssumeNorthUp {
		return NorthUp, nil
	}
	if len(outline) < 3 {
		return Vec{}, fmt.Errorf("%w: outline has %d points", ErrDegenerateReference, len(outline))
	}

	m := PolygonMoments(outline)
	if m.Area == 0 {
		return Vec{}, fmt.Errorf("%w: zero area", ErrDegenerateReference)
	}

	axis, aspect := m.PrincipalAxis()
	if aspect < cfg.MinAspectRatio {
		return Vec{}, fmt.Errorf("%w: aspect ratio %.2f below %.2f",
			ErrDegenerateReference, aspect, cfg.MinAspectRatio)
	}

	var head Vec
	if len(polygon) == 3 {
		t, err := AnalyzeTriangle([3]Vec{polygon[0], polygon[1], polygon[2]}, tri)
		if err != nil {
			return Vec{}, fmt.Errorf("%w: %v", ErrDegenerateReference, err)
		}
		head = t.Tip.Sub(m.Centroid)
	} else {
		dir, err := taperedEnd(outline, m.Centroid, axis, cfg.HeadTolerance)
		if err != nil {
			return Vec{}, err
		}
		head = dir
	}

	if head.Dot(axis) < 0 {
		axis = axis.Scale(-1)
	}
	return axis, nil
}

// Sample positions along the axis, as fractions of the shape length measured
// from each end.
const (
	taperNear = 0.05
	taperFar  = 0.25
)

// taperedEnd returns axis or -axis, whichever points at the end of the outline
// whose cross-section narrows the most toward its extreme.
func taperedEnd(outline []Vec, centroid, axis Vec, tolerance float64) (Vec, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range outline {
		d := p.Sub(centroid).Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	length := hi - lo
	if length == 0 {
		return Vec{}, fmt.Errorf("%w: zero length", ErrDegenerateReference)
	}

	taper := func(extreme, inward float64) float64 {
		near := crossWidth(outline, centroid, axis, extreme+inward*taperNear*length)
		far := crossWidth(outline, centroid, axis, extreme+inward*taperFar*length)
		if far == 0 {
			return 1
		}
		return near / far
	}
	forward := taper(hi, -1)
	backward := taper(lo, 1)

	if math.Abs(forward-backward) <= tolerance*math.Max(forward, backward) {
		return Vec{}, fmt.Errorf("%w: both ends taper alike (%.2f, %.2f)",
			ErrDegenerateReference, forward, backward)
	}
	if forward < backward {
		return axis, nil
	}
	return axis.Scale(-1), nil
}

// crossWidth returns the width of the polygon along the line perpendicular to
// axis at signed offset t from centroid.
func crossWidth(poly []Vec, centroid, axis Vec, t float64) float64 {
	perp := Vec{X: -axis.Y, Y: axis.X}
	lo, hi := math.Inf(1), math.Inf(-1)
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		da := p.Sub(centroid).Dot(axis) - t
		db := q.Sub(centroid).Dot(axis) - t
		if (da <= 0) == (db <= 0) {
			continue
		}
		x := p.Add(q.Sub(p).Scale(da / (da - db)))
		w := x.Sub(centroid).Dot(perp)
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}
