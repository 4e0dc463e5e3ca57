// Package locator runs the full map-reading pipeline on a single image:
// colour segmentation, shape extraction, apex and north detection, bearing
// and position normalization.
package locator

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/geometry"
	"github.com/ayusman/mapreader/internal/mapframe"
	"github.com/ayusman/mapreader/internal/segment"
	"github.com/ayusman/mapreader/internal/shape"
)

// ErrEmptyImage is returned for images without pixels or without three channels.
var ErrEmptyImage = errors.New("empty image")

// Locator defines the interface for pointer locators.
type Locator interface {
	// Locate reads the pointer position and bearing from a BGR image.
	Locate(img gocv.Mat) (*Result, error)
}

// Config holds every tunable of the pipeline.
type Config struct {
	Profile      segment.Profile          `json:"profile"`
	Shape        shape.Params             `json:"shape"`
	Triangle     geometry.TriangleConfig  `json:"triangle"`
	Reference    geometry.ReferenceConfig `json:"reference"`
	Map          mapframe.Config          `json:"map"`
	MinDirection float64                  `json:"min_direction"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Profile:      segment.DefaultProfile(),
		Shape:        shape.DefaultParams(),
		Triangle:     geometry.DefaultTriangleConfig(),
		Reference:    geometry.DefaultReferenceConfig(),
		Map:          mapframe.DefaultConfig(),
		MinDirection: geometry.DefaultMinDirection,
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if c.Shape.SimplifyRatio <= 0 || c.Shape.SimplifyRatio >= 1 {
		return fmt.Errorf("shape: simplify ratio %v outside (0, 1)", c.Shape.SimplifyRatio)
	}
	if c.Shape.MinArea < 0 {
		return fmt.Errorf("shape: negative minimum area %v", c.Shape.MinArea)
	}
	if c.Triangle.ApexTolerance < 0 || c.Triangle.CollinearRatio < 0 {
		return errors.New("triangle: tolerances must not be negative")
	}
	if c.Reference.MinAspectRatio < 1 && !c.Reference.AssumeNorthUp {
		return fmt.Errorf("reference: minimum aspect ratio %v below 1", c.Reference.MinAspectRatio)
	}
	switch c.Map.Mode {
	case mapframe.ModeFrame, mapframe.ModeDetect:
	default:
		return fmt.Errorf("map: unknown mode %q", c.Map.Mode)
	}
	return nil
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Tip is the pointer apex in the normalized map frame.
	Tip geometry.Position `json:"tip"`
	// Bearing is the pointer heading in degrees clockwise from north.
	Bearing float64 `json:"bearing"`

	TipPixel geometry.Vec `json:"tip_pixel"`
	Centroid geometry.Vec `json:"centroid"`
	North    geometry.Vec `json:"north"`
	// Frame is the size of the image the pixel coordinates refer to: the
	// input image, or the rectified map when map detection is on.
	Frame geometry.Rect `json:"frame"`
}

// Pipeline is the OpenCV-backed Locator. It holds no state between calls and
// is safe for concurrent use.
type Pipeline struct {
	config Config
}

// New creates a Pipeline with the given configuration.
func New(config Config) *Pipeline {
	return &Pipeline{config: config}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Locate runs the pipeline on img. img is never modified.
func (p *Pipeline) Locate(img gocv.Mat) (*Result, error) {
	if img.Empty() || img.Channels() != 3 {
		return nil, ErrEmptyImage
	}

	frame := img
	if p.config.Map.Mode == mapframe.ModeDetect {
		warped, err := mapframe.Rectify(img, p.config.Profile.Background, p.config.Map)
		if err != nil {
			return nil, err
		}
		defer warped.Close()
		frame = warped
	}

	pointer, err := p.extract(frame, segment.Pointer, shape.Triangle)
	if err != nil {
		return nil, err
	}

	verts := geometry.FromPoints(pointer.Polygon)
	tri, err := geometry.AnalyzeTriangle([3]geometry.Vec{verts[0], verts[1], verts[2]}, p.config.Triangle)
	if err != nil {
		return nil, err
	}

	north, err := p.north(frame)
	if err != nil {
		return nil, err
	}

	bearing, err := geometry.Bearing(tri.Centroid, tri.Tip, north, p.config.MinDirection)
	if err != nil {
		return nil, err
	}

	bounds := geometry.RectFromSize(frame.Cols(), frame.Rows())
	return &Result{
		Tip:      geometry.Normalize(tri.Tip, bounds),
		Bearing:  bearing,
		TipPixel: tri.Tip,
		Centroid: tri.Centroid,
		North:    north,
		Frame:    bounds,
	}, nil
}

func (p *Pipeline) extract(img gocv.Mat, class segment.ColorClass, e shape.Expectation) (*shape.Shape, error) {
	mask, err := segment.Segment(img, p.config.Profile, class)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	s, err := shape.Extract(mask, e, p.config.Shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", class, err)
	}
	return s, nil
}

func (p *Pipeline) north(img gocv.Mat) (geometry.Vec, error) {
	if p.config.Reference.AssumeNorthUp {
		return geometry.NorthUp, nil
	}

	ref, err := p.extract(img, segment.Reference, shape.DirectionalShape)
	if err != nil {
		return geometry.Vec{}, err
	}
	return geometry.ResolveNorth(
		geometry.FromPoints(ref.Outline),
		geometry.FromPoints(ref.Polygon),
		p.config.Triangle,
		p.config.Reference,
	)
}
