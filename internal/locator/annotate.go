package locator

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/geometry"
)

// Annotation colours.
var (
	HeadingColor = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	NorthColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// northArrowLength is the length in pixels of the drawn north arrow.
const northArrowLength = 40

// Annotate draws r onto img: the heading from centroid to tip, a circle on
// the tip and the north direction from the centroid. Coordinates are those of
// the frame the result was computed in, so with map detection on img should
// be the rectified map.
func Annotate(img *gocv.Mat, r *Result) {
	centroid := toPoint(r.Centroid)
	tip := toPoint(r.TipPixel)

	gocv.ArrowedLine(img, centroid, tip, HeadingColor, 2)
	gocv.Circle(img, tip, 4, HeadingColor, -1)

	north := toPoint(r.Centroid.Add(r.North.Unit().Scale(northArrowLength)))
	gocv.ArrowedLine(img, centroid, north, NorthColor, 1)
}

func toPoint(v geometry.Vec) image.Point {
	return image.Pt(int(v.X+0.5), int(v.Y+0.5))
}
