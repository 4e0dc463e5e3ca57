// Package segment isolates marker colours in an image using HSV thresholds.
package segment

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("color not found")

// ColorClass identifies which marker a colour range selects.
type ColorClass int

const (
	// Pointer is the red triangular marker.
	Pointer ColorClass = iota
	// Reference is the green north arrow.
	Reference
	// Background is the dark blue surround of the map.
	Background
)

// String returns the lowercase name of the class.
func (c ColorClass) String() string {
	switch c {
	case Pointer:
		return "pointer"
	case Reference:
		return "reference"
	case Background:
		return "background"
	default:
		return "unknown"
	}
}

// NotFoundError reports that no pixel matched the range for a colour class.
type NotFoundError struct {
	Class ColorClass
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s pixels found", e.Class)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ColorRange is an HSV window. Hue is in degrees [0, 360); a HueMin greater
// than HueMax wraps across 0°. Saturation and value are on OpenCV's 0-255 scale.
type ColorRange struct {
	HueMin float64 `json:"hue_min"`
	HueMax float64 `json:"hue_max"`
	SatMin float64 `json:"sat_min"`
	ValMin float64 `json:"val_min"`
	ValMax float64 `json:"val_max"`
}

// Wraps reports whether the hue window crosses 0°.
func (r ColorRange) Wraps() bool {
	return r.HueMin > r.HueMax
}

// Validate checks that all bounds are inside their scales.
func (r ColorRange) Validate() error {
	if r.HueMin < 0 || r.HueMin >= 360 || r.HueMax < 0 || r.HueMax >= 360 {
		return fmt.Errorf("hue window [%.0f, %.0f] outside [0, 360)", r.HueMin, r.HueMax)
	}
	if r.SatMin < 0 || r.SatMin > 255 {
		return fmt.Errorf("saturation minimum %.0f outside [0, 255]", r.SatMin)
	}
	if r.ValMin < 0 || r.ValMax > 255 || r.ValMin > r.ValMax {
		return fmt.Errorf("value window [%.0f, %.0f] invalid", r.ValMin, r.ValMax)
	}
	return nil
}

// Profile is the colour scheme of a map: one range per colour class.
type Profile struct {
	Pointer    ColorRange `json:"pointer"`
	Reference  ColorRange `json:"reference"`
	Background ColorRange `json:"background"`
}

// DefaultProfile returns a red pointer and green arrow on a dark blue background.
func DefaultProfile() Profile {
	return Profile{
		Pointer:    ColorRange{HueMin: 320, HueMax: 20, SatMin: 50, ValMin: 30, ValMax: 255},
		Reference:  ColorRange{HueMin: 70, HueMax: 170, SatMin: 50, ValMin: 30, ValMax: 255},
		Background: ColorRange{HueMin: 190, HueMax: 220, SatMin: 50, ValMin: 30, ValMax: 255},
	}
}

// Range returns the colour range configured for a class.
func (p Profile) Range(c ColorClass) ColorRange {
	switch c {
	case Reference:
		return p.Reference
	case Background:
		return p.Background
	default:
		return p.Pointer
	}
}

// Validate checks every range of the profile.
func (p Profile) Validate() error {
	for _, c := range []ColorClass{Pointer, Reference, Background} {
		if err := p.Range(c).Validate(); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// openCVHue converts degrees to OpenCV's 8-bit hue scale [0, 180).
func openCVHue(deg float64) float64 {
	return math.Min(179, math.Floor(deg/2))
}

// Segment returns a binary mask (0 or 255, single channel) of the pixels of a
// BGR image that fall inside the colour range of class. The caller owns the
// returned mask. An empty match returns a *NotFoundError.
func Segment(img gocv.Mat, p Profile, class ColorClass) (gocv.Mat, error) {
	mask, err := Mask(img, p.Range(class))
	if err != nil {
		return mask, err
	}
	if gocv.CountNonZero(mask) == 0 {
		mask.Close()
		return gocv.NewMat(), &NotFoundError{Class: class}
	}
	return mask, nil
}

// Mask thresholds img against r without checking for an empty result.
func Mask(img gocv.Mat, r ColorRange) (gocv.Mat, error) {
	if img.Empty() || img.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("segment: expected a 3-channel image, got %d channels", img.Channels())
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	lo, hi := openCVHue(r.HueMin), openCVHue(r.HueMax)
	mask := gocv.NewMat()

	if !r.Wraps() {
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(lo, r.SatMin, r.ValMin, 0),
			gocv.NewScalar(hi, 255, r.ValMax, 0),
			&mask)
		return mask, nil
	}

	upper := gocv.NewMat()
	defer upper.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(lo, r.SatMin, r.ValMin, 0),
		gocv.NewScalar(179, 255, r.ValMax, 0),
		&upper)

	lower := gocv.NewMat()
	defer lower.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, r.SatMin, r.ValMin, 0),
		gocv.NewScalar(hi, 255, r.ValMax, 0),
		&lower)

	gocv.BitwiseOr(upper, lower, &mask)
	return mask, nil
}
