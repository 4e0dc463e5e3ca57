// Package mapframe finds the map inside a photographed scene and warps it to
// an axis-aligned image, so positions can be normalized against the map
// rather than the whole frame.
package mapframe

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/segment"
	"github.com/ayusman/mapreader/internal/shape"
)

// ErrMapNotFound is returned when no quadrilateral map region is found.
var ErrMapNotFound = errors.New("map not found")

// Mode selects the normalization domain.
type Mode string

const (
	// ModeFrame treats the whole image as the map.
	ModeFrame Mode = "frame"
	// ModeDetect locates the map against its background and rectifies it.
	ModeDetect Mode = "detect"
)

// Config controls map detection.
type Config struct {
	Mode Mode `json:"mode"`

	// MinAreaRatio is the smallest fraction of the image the map may cover.
	MinAreaRatio float64 `json:"min_area_ratio"`

	// SimplifyRatio is the polygon tolerance used to reduce the map outline to
	// four corners, as a fraction of its perimeter.
	SimplifyRatio float64 `json:"simplify_ratio"`
}

// DefaultConfig returns a config that uses the whole frame.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeFrame,
		MinAreaRatio:  0.1,
		SimplifyRatio: 0.1,
	}
}

// OrderCorners sorts four points as top-left, top-right, bottom-right,
// bottom-left. The top-left corner has the smallest x+y and the bottom-right
// the largest; top-right has the smallest y-x and bottom-left the largest.
func OrderCorners(pts [4]image.Point) [4]image.Point {
	var tl, tr, br, bl image.Point
	for i, p := range pts {
		if i == 0 || p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if i == 0 || p.X+p.Y > br.X+br.Y {
			br = p
		}
		if i == 0 || p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if i == 0 || p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return [4]image.Point{tl, tr, br, bl}
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Find returns the ordered corners of the map region of img. The map is the
// largest non-background region that simplifies to four corners.
func Find(img gocv.Mat, background segment.ColorRange, cfg Config) ([4]image.Point, error) {
	var corners [4]image.Point

	bg, err := segment.Mask(img, background)
	if err != nil {
		return corners, err
	}
	defer bg.Close()

	fg := gocv.NewMat()
	defer fg.Close()
	gocv.BitwiseNot(bg, &fg)

	minArea := cfg.MinAreaRatio * float64(img.Rows()*img.Cols())
	region, err := shape.Select(
		shape.Candidates(fg, shape.Params{MinArea: minArea, SimplifyRatio: cfg.SimplifyRatio}),
		shape.DirectionalShape, minArea)
	if err != nil {
		return corners, fmt.Errorf("%w: %v", ErrMapNotFound, err)
	}
	if region.Vertices() != 4 {
		return corners, fmt.Errorf("%w: map outline has %d corners", ErrMapNotFound, region.Vertices())
	}

	copy(corners[:], region.Polygon)
	return OrderCorners(corners), nil
}

// Rectify finds the map in img and returns it warped to an upright rectangle.
// The caller owns the returned Mat.
func Rectify(img gocv.Mat, background segment.ColorRange, cfg Config) (gocv.Mat, error) {
	c, err := Find(img, background, cfg)
	if err != nil {
		return gocv.NewMat(), err
	}
	tl, tr, br, bl := c[0], c[1], c[2], c[3]

	width := int(math.Max(dist(br, bl), dist(tr, tl)))
	height := int(math.Max(dist(tr, br), dist(tl, bl)))
	if width < 1 || height < 1 {
		return gocv.NewMat(), fmt.Errorf("%w: collapsed corners %v", ErrMapNotFound, c)
	}

	src := gocv.NewPointVectorFromPoints(c[:])
	defer src.Close()
	dst := gocv.NewPointVectorFromPoints([]image.Point{
		{0, 0},
		{width - 1, 0},
		{width - 1, height - 1},
		{0, height - 1},
	})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform(src, dst)
	defer m.Close()

	warped := gocv.NewMat()
	gocv.WarpPerspective(img, &warped, m, image.Pt(width, height))
	return warped, nil
}
