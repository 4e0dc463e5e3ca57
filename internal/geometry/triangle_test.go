package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// upTriangle has its apex at (100,40) and centroid at (100,100).
var upTriangle = [3]Vec{{100, 40}, {80, 130}, {120, 130}}

func TestAnalyzeTriangle_ApexPointingUp(t *testing.T) {
	tri, err := AnalyzeTriangle(upTriangle, DefaultTriangleConfig())
	if err != nil {
		t.Fatalf("AnalyzeTriangle() error = %v", err)
	}

	assert.Equal(t, Vec{100, 40}, tri.Tip)
	assert.InDelta(t, 100.0, tri.Centroid.X, 1e-9)
	assert.InDelta(t, 100.0, tri.Centroid.Y, 1e-9)
	assert.Equal(t, Vec{100, 130}, tri.Base)
}

func TestAnalyzeTriangle_RotationInvariant(t *testing.T) {
	east := [3]Vec{{160, 100}, {70, 80}, {70, 120}}

	for _, base := range [][3]Vec{upTriangle, east} {
		want, err := AnalyzeTriangle(base, DefaultTriangleConfig())
		if err != nil {
			t.Fatalf("AnalyzeTriangle() error = %v", err)
		}

		rotations := [][3]Vec{
			{base[1], base[2], base[0]},
			{base[2], base[0], base[1]},
			{base[2], base[1], base[0]},
		}
		for i, r := range rotations {
			got, err := AnalyzeTriangle(r, DefaultTriangleConfig())
			if err != nil {
				t.Fatalf("rotation %d: error = %v", i, err)
			}
			if got.Tip != want.Tip {
				t.Errorf("rotation %d: tip = %v, want %v", i, got.Tip, want.Tip)
			}
		}
	}
}

func TestAnalyzeTriangle_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		vertices [3]Vec
	}{
		{
			name:     "equilateral",
			vertices: [3]Vec{{0, 0}, {100, 0}, {50, 86.6025403784}},
		},
		{
			name:     "nearly equilateral within tolerance",
			vertices: [3]Vec{{0, 0}, {100, 0}, {50, 90}},
		},
		{
			name:     "collinear",
			vertices: [3]Vec{{0, 0}, {50, 50}, {100, 100}},
		},
		{
			name:     "nearly collinear",
			vertices: [3]Vec{{0, 0}, {50, 0.5}, {100, 0}},
		},
		{
			name:     "coincident",
			vertices: [3]Vec{{10, 10}, {10, 10}, {10, 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeTriangle(tt.vertices, DefaultTriangleConfig())
			if !errors.Is(err, ErrDegenerateTriangle) {
				t.Errorf("error = %v, want ErrDegenerateTriangle", err)
			}
		})
	}
}

func TestAnalyzeTriangle_ToleranceIsConfigurable(t *testing.T) {
	// Edges: base 100, legs ~103. Ambiguous at the default tolerance,
	// accepted once the tolerance is relaxed.
	v := [3]Vec{{0, 0}, {100, 0}, {50, 90}}

	_, err := AnalyzeTriangle(v, TriangleConfig{CollinearRatio: 0.02, ApexTolerance: 0.01})
	if err != nil {
		t.Fatalf("relaxed tolerance: error = %v", err)
	}
}
