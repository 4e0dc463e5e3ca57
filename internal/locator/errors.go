package locator

import (
	"errors"

	"github.com/ayusman/mapreader/internal/geometry"
	"github.com/ayusman/mapreader/internal/mapframe"
	"github.com/ayusman/mapreader/internal/segment"
	"github.com/ayusman/mapreader/internal/shape"
	"github.com/ayusman/mapreader/internal/source"
)

// Error kinds reported by Kind.
const (
	KindNotFound             = "not_found"
	KindShapeNotFound        = "shape_not_found"
	KindDegenerateTriangle   = "degenerate_triangle"
	KindDegenerateReference  = "degenerate_reference"
	KindUndefinedOrientation = "undefined_orientation"
	KindMapNotFound          = "map_not_found"
	KindEmptyImage           = "empty_image"
	KindInternal             = "internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{segment.ErrNotFound, KindNotFound},
	{shape.ErrShapeNotFound, KindShapeNotFound},
	{geometry.ErrDegenerateTriangle, KindDegenerateTriangle},
	{geometry.ErrDegenerateReference, KindDegenerateReference},
	{geometry.ErrUndefinedOrientation, KindUndefinedOrientation},
	{mapframe.ErrMapNotFound, KindMapNotFound},
	{ErrEmptyImage, KindEmptyImage},
	{source.ErrEmptyImage, KindEmptyImage},
}

// Kind classifies a pipeline error. It returns "" for nil and KindInternal for
// errors outside the pipeline taxonomy.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsInputError reports whether err means the image does not contain readable
// markers, as opposed to a failure of the system itself.
func IsInputError(err error) bool {
	k := Kind(err)
	return k != "" && k != KindInternal
}
