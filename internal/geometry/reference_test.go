package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolygonMoments_Rectangle(t *testing.T) {
	// 40x10 rectangle centred at (20,5).
	rect := []Vec{{0, 0}, {40, 0}, {40, 10}, {0, 10}}

	m := PolygonMoments(rect)
	assert.InDelta(t, 400.0, m.Area, 1e-9)
	assert.InDelta(t, 20.0, m.Centroid.X, 1e-9)
	assert.InDelta(t, 5.0, m.Centroid.Y, 1e-9)
	assert.InDelta(t, 40.0*40/12, m.Mu20, 1e-9)
	assert.InDelta(t, 10.0*10/12, m.Mu02, 1e-9)
	assert.InDelta(t, 0.0, m.Mu11, 1e-9)

	axis, aspect := m.PrincipalAxis()
	assert.InDelta(t, 1.0, math.Abs(axis.X), 1e-9)
	assert.InDelta(t, 4.0, aspect, 1e-9)
}

func TestPolygonMoments_WindingIndependent(t *testing.T) {
	cw := []Vec{{0, 0}, {0, 10}, {40, 10}, {40, 0}}
	ccw := []Vec{{0, 0}, {40, 0}, {40, 10}, {0, 10}}

	a, b := PolygonMoments(cw), PolygonMoments(ccw)
	assert.InDelta(t, a.Area, b.Area, 1e-9)
	assert.InDelta(t, a.Mu20, b.Mu20, 1e-9)
	assert.InDelta(t, a.Mu02, b.Mu02, 1e-9)
}

func TestResolveNorth_Triangle(t *testing.T) {
	tests := []struct {
		name    string
		polygon []Vec
		want    Vec
	}{
		{"up", []Vec{{50, 10}, {35, 90}, {65, 90}}, Vec{0, -1}},
		{"down", []Vec{{50, 90}, {35, 10}, {65, 10}}, Vec{0, 1}},
		{"right", []Vec{{90, 50}, {10, 35}, {10, 65}}, Vec{1, 0}},
		{"left", []Vec{{10, 50}, {90, 35}, {90, 65}}, Vec{-1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNorth(tt.polygon, tt.polygon, DefaultTriangleConfig(), DefaultReferenceConfig())
			if err != nil {
				t.Fatalf("ResolveNorth() error = %v", err)
			}
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, 1.0, got.Len(), 1e-9)
		})
	}
}

func TestResolveNorth_ArrowWithShaft(t *testing.T) {
	// A wide head on a long shaft: the shaft end reaches about as far from the
	// centroid as the tip, so the head has to be found by its taper.
	up := []Vec{
		{50, 0}, {70, 30}, {60, 30}, {60, 110},
		{40, 110}, {40, 30}, {30, 30},
	}
	down := []Vec{
		{45, 0}, {55, 0}, {55, 70}, {70, 70},
		{50, 100}, {30, 70}, {45, 70},
	}

	tests := []struct {
		name    string
		outline []Vec
		want    Vec
	}{
		{"pointing up", up, Vec{0, -1}},
		{"pointing down", down, Vec{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNorth(tt.outline, tt.outline, DefaultTriangleConfig(), DefaultReferenceConfig())
			if err != nil {
				t.Fatalf("ResolveNorth() error = %v", err)
			}
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
		})
	}
}

func TestResolveNorth_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		outline []Vec
	}{
		{"square", []Vec{{0, 0}, {50, 0}, {50, 50}, {0, 50}}},
		{"equilateral", []Vec{{0, 0}, {100, 0}, {50, 86.6025403784}}},
		{"symmetric rectangle", []Vec{{0, 0}, {100, 0}, {100, 20}, {0, 20}}},
		{"line", []Vec{{0, 0}, {10, 10}, {20, 20}}},
		{"too few points", []Vec{{0, 0}, {10, 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveNorth(tt.outline, tt.outline, DefaultTriangleConfig(), DefaultReferenceConfig())
			if !errors.Is(err, ErrDegenerateReference) {
				t.Errorf("error = %v, want ErrDegenerateReference", err)
			}
		})
	}
}

func TestResolveNorth_AssumeNorthUp(t *testing.T) {
	cfg := DefaultReferenceConfig()
	cfg.AssumeNorthUp = true

	got, err := ResolveNorth(nil, nil, DefaultTriangleConfig(), cfg)
	if err != nil {
		t.Fatalf("ResolveNorth() error = %v", err)
	}
	assert.Equal(t, NorthUp, got)
}
