package locator

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/geometry"
)

// MockLocator is a test implementation of the Locator interface.
// It allows tests to control the results.
type MockLocator struct {
	mu     sync.Mutex
	result *Result
	err    error
	calls  int
}

// NewMockLocator creates a new MockLocator returning UpResult.
func NewMockLocator() *MockLocator {
	r := UpResult()
	return &MockLocator{result: &r}
}

// SetResult sets the result that will be returned by Locate.
func (m *MockLocator) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &r
	m.err = nil
}

// SetError sets the error that will be returned by Locate.
func (m *MockLocator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Locate has been called.
func (m *MockLocator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Locate returns the pre-configured result or error.
func (m *MockLocator) Locate(img gocv.Mat) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	return &r, nil
}

// UpResult returns the reading of a 200x200 map with the pointer apex at
// (100,40) facing north.
func UpResult() Result {
	return Result{
		Tip:      geometry.Position{X: 0.5, Y: 0.8},
		Bearing:  0,
		TipPixel: geometry.Vec{X: 100, Y: 40},
		Centroid: geometry.Vec{X: 100, Y: 100},
		North:    geometry.NorthUp,
		Frame:    geometry.RectFromSize(200, 200),
	}
}
