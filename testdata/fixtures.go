// Package testdata renders synthetic map scenes for tests.
package testdata

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Scene colours.
var (
	Blue  = color.RGBA{R: 30, G: 90, B: 150, A: 255}
	Paper = color.RGBA{R: 235, G: 225, B: 200, A: 255}
	Red   = color.RGBA{R: 220, G: 20, B: 20, A: 255}
	Green = color.RGBA{R: 20, G: 200, B: 20, A: 255}
)

// Scene describes a map image: a map rectangle on a background, a pointer
// polygon and a reference polygon, all in pixel coordinates.
type Scene struct {
	Width, Height int
	// Map is the map area. An empty rectangle fills the whole image.
	Map       image.Rectangle
	Pointer   []image.Point
	Reference []image.Point
}

// DefaultScene is a 200x200 map filling the frame, with the pointer apex at
// (100,40), its centroid at (100,100), and the reference arrow pointing up.
func DefaultScene() Scene {
	return Scene{
		Width:     200,
		Height:    200,
		Pointer:   []image.Point{{100, 40}, {80, 130}, {120, 130}},
		Reference: UpArrow(image.Pt(30, 15)),
	}
}

// EastScene is DefaultScene with the pointer turned to face right.
func EastScene() Scene {
	s := DefaultScene()
	s.Pointer = []image.Point{{160, 100}, {70, 80}, {70, 120}}
	return s
}

// UpArrow returns a narrow triangle with its tip at tip, pointing up.
func UpArrow(tip image.Point) []image.Point {
	return []image.Point{tip, {tip.X - 8, tip.Y + 40}, {tip.X + 8, tip.Y + 40}}
}

// RightArrow returns a narrow triangle with its tip at tip, pointing right.
func RightArrow(tip image.Point) []image.Point {
	return []image.Point{tip, {tip.X - 40, tip.Y - 8}, {tip.X - 40, tip.Y + 8}}
}

// Render draws the scene into a new BGR Mat owned by the caller.
func (s Scene) Render() gocv.Mat {
	img := gocv.NewMatWithSize(s.Height, s.Width, gocv.MatTypeCV8UC3)
	img.SetTo(gocv.NewScalar(float64(Blue.B), float64(Blue.G), float64(Blue.R), 0))

	area := s.Map
	if area.Empty() {
		area = image.Rect(0, 0, s.Width, s.Height)
	}
	gocv.Rectangle(&img, area, Paper, -1)

	fill := func(pts []image.Point, c color.RGBA) {
		if len(pts) == 0 {
			return
		}
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
		defer pv.Close()
		gocv.FillPoly(&img, pv, c)
	}
	fill(s.Pointer, Red)
	fill(s.Reference, Green)

	return img
}

// Encode renders the scene and encodes it with the given extension, e.g. ".png".
func (s Scene) Encode(ext string) ([]byte, error) {
	img := s.Render()
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.FileExt(ext), img)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
