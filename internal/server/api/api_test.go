package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mapreader-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// newTestApp returns an app backed by s whose locator is a mock.
func newTestApp(t *testing.T, s *store.Store) (*app.App, *locator.MockLocator) {
	t.Helper()

	mock := locator.NewMockLocator()
	a := app.New(app.Config{
		Store:      s,
		Pipeline:   locator.DefaultConfig(),
		NewLocator: func(locator.Config) locator.Locator { return mock },
	})
	return a, mock
}

// pngBody encodes a dark blue PNG of the given size.
func pngBody(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
