package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/store"
)

// Process reads one image and records the outcome.
//
// The returned reading is nil only when recording failed. A pipeline error is
// returned together with the failed reading that records it; use
// locator.IsInputError to tell it from a system failure.
func (a *App) Process(ctx context.Context, name string, img gocv.Mat) (*store.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := a.Locator().Locate(img)
	return a.record(ctx, name, res, err)
}

// ProcessFile opens the named image from the app's source and processes it.
// An image without pixels is recorded as a failed reading; other open errors
// are returned without one.
func (a *App) ProcessFile(ctx context.Context, name string) (*store.Reading, error) {
	img, err := a.source.Open(name)
	if err != nil {
		img.Close()
		if locator.IsInputError(err) {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return a.record(ctx, name, nil, err)
		}
		return nil, err
	}
	defer img.Close()
	return a.Process(ctx, name, img)
}

// record persists the outcome of one image and distributes it.
func (a *App) record(ctx context.Context, name string, res *locator.Result, locErr error) (*store.Reading, error) {
	rd := newReading(name, res, locErr)

	if s := a.config.Store; s != nil {
		if err := s.Readings().Create(rd); err != nil {
			a.log.Error().Err(err).Str("source", name).Msg("failed to store reading")
			return nil, err
		}
	}

	if locErr != nil {
		a.log.Warn().Str("source", name).Str("kind", rd.Kind).Err(locErr).Msg("no reading")
	} else {
		a.log.Info().
			Str("source", name).
			Float64("x", rd.TipX).
			Float64("y", rd.TipY).
			Float64("bearing", rd.Bearing).
			Msg("reading")
	}

	a.distribute(ctx, rd)
	return rd, locErr
}

func newReading(name string, res *locator.Result, err error) *store.Reading {
	rd := &store.Reading{
		ID:        uuid.New().String(),
		Source:    name,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		rd.Status = store.StatusFailed
		rd.Error = err.Error()
		rd.Kind = locator.Kind(err)
		return rd
	}

	rd.Status = store.StatusOK
	rd.TipX = res.Tip.X
	rd.TipY = res.Tip.Y
	rd.Bearing = res.Bearing
	rd.TipPX = res.TipPixel.X
	rd.TipPY = res.TipPixel.Y
	return rd
}

// distribute hands a recorded reading to sinks and callbacks. Sink failures
// are logged and do not affect the reading.
func (a *App) distribute(ctx context.Context, rd *store.Reading) {
	a.mu.Lock()
	a.last = rd
	sinks := append([]Sink(nil), a.config.Sinks...)
	callbacks := append(([]func(*store.Reading))(nil), a.callbacks...)
	a.mu.Unlock()

	for _, s := range sinks {
		if err := s.Notify(ctx, rd); err != nil {
			a.log.Warn().Err(err).Str("reading", rd.ID).Msg("sink failed")
		}
	}
	for _, cb := range callbacks {
		cb(rd)
	}
}
