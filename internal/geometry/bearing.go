package geometry

import (
	"fmt"
	"math"
)

// DefaultMinDirection is the shortest centroid→tip vector, in pixels, that
// still defines an orientation.
const DefaultMinDirection = 1e-6

// Position is a point in the normalized map frame: x rightward, y upward,
// origin at the bottom-left corner, both in [0, 1].
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bearing returns the clockwise angle in degrees, in [0, 360), from north to
// the direction centroid→tip. All arguments are in pixel space.
func Bearing(centroid, tip, north Vec, minLen float64) (float64, error) {
	d := tip.Sub(centroid)
	if d.Len() < minLen || d.Len() == 0 {
		return 0, fmt.Errorf("%w: tip (%.2f, %.2f) coincides with centroid",
			ErrUndefinedOrientation, tip.X, tip.Y)
	}
	if north.Len() == 0 {
		return 0, fmt.Errorf("%w: zero north vector", ErrDegenerateReference)
	}
	return ClockwiseAngle(ToCompass(north), ToCompass(d)), nil
}

// ClockwiseAngle returns the clockwise angle in degrees from a to b, both given
// in the right-handed geometric frame, reduced to [0, 360).
func ClockwiseAngle(a, b Vec) float64 {
	ccw := math.Atan2(a.Cross(b), a.Dot(b))
	return NormalizeDegrees(-ccw * 180 / math.Pi)
}

// NormalizeDegrees reduces an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 || deg == 0 {
		// folds 360 from rounding and -0 into 0
		return 0
	}
	return deg
}

// AngleDiff returns the absolute angular distance between two bearings in degrees.
func AngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	return math.Min(d, 360-d)
}

// Normalize maps a pixel coordinate inside bounds into the map frame.
func Normalize(p Vec, bounds Rect) Position {
	rel := ToCompass(p.Sub(Vec{X: bounds.MinX, Y: bounds.MinY}))
	return Position{
		X: rel.X / bounds.Width(),
		Y: 1 + rel.Y/bounds.Height(),
	}
}
