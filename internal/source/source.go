// Package source loads map images into BGR OpenCV matrices.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"
	"sync"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when the data decodes to an image without pixels.
var ErrEmptyImage = errors.New("empty image")

// ErrUnknownImage is returned by MemorySource for names it does not hold.
var ErrUnknownImage = errors.New("unknown image")

// Source defines the interface for image sources.
type Source interface {
	// Open returns the named image as a BGR Mat. The caller owns the Mat.
	Open(name string) (gocv.Mat, error)
}

// Load reads an image file. The caller is responsible for closing the Mat.
func Load(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("read image: %w", err)
	}
	mat, err := Decode(data)
	if err != nil {
		return mat, fmt.Errorf("%s: %w", path, err)
	}
	return mat, nil
}

// Decode decodes encoded image bytes into a 3-channel BGR Mat. OpenCV codecs
// are tried first; formats OpenCV was built without fall back to the Go image
// decoders.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	img, format, derr := image.Decode(bytes.NewReader(data))
	if derr != nil {
		return gocv.NewMat(), fmt.Errorf("decode image: %w", derr)
	}
	if img.Bounds().Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}

	// ImageToMatRGB writes the channels in OpenCV's BGR order.
	tmp, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert %s image: %w", format, err)
	}
	defer tmp.Close()
	// Detach from the Go buffer the Mat was built on.
	return tmp.Clone(), nil
}

// FileSource opens images from the local filesystem.
type FileSource struct{}

// Open loads the file at name.
func (FileSource) Open(name string) (gocv.Mat, error) {
	return Load(name)
}

// MemorySource serves encoded images held in memory.
type MemorySource struct {
	mu     sync.Mutex
	images map[string][]byte
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{images: make(map[string][]byte)}
}

// Add stores encoded image data under name, replacing any previous entry.
func (s *MemorySource) Add(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = data
}

// Names returns the stored names in sorted order.
func (s *MemorySource) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.images))
	for n := range s.images {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open decodes the image stored under name.
func (s *MemorySource) Open(name string) (gocv.Mat, error) {
	s.mu.Lock()
	data, ok := s.images[name]
	s.mu.Unlock()
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnknownImage, name)
	}
	return Decode(data)
}
