// Package batch reads many map images concurrently.
package batch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/store"
)

// Processor reads one image file.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*store.Reading, error)
}

// Item is the outcome for one input path.
type Item struct {
	Path    string
	Reading *store.Reading
	Err     error
}

// Summary counts outcomes of a run.
type Summary struct {
	OK      int
	Failed  int
	Skipped int
}

// Runner processes paths on a fixed number of workers.
type Runner struct {
	proc    Processor
	workers int
	log     zerolog.Logger
}

// New creates a Runner. Fewer than one worker means one.
func New(proc Processor, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		proc:    proc,
		workers: workers,
		log:     log.With().Str("module", "batch").Logger(),
	}
}

type workItem struct {
	index int
	path  string
}

// Run processes every path and returns one Item per path, in input order.
// Images are independent, so a failing image does not stop the run. When ctx
// is canceled, paths not yet started get ctx.Err() and Run returns it.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Item, error) {
	items := make([]Item, len(paths))
	for i, p := range paths {
		items[i].Path = p
	}

	workCh := make(chan workItem)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				rd, err := r.proc.ProcessFile(ctx, w.path)
				// Each index is written by exactly one worker.
				items[w.index].Reading = rd
				items[w.index].Err = err
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case workCh <- workItem{index: next, path: paths[next]}:
		}
	}
	close(workCh)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		items[i].Err = ctx.Err()
	}

	s := Summarize(items)
	r.log.Info().Int("ok", s.OK).Int("failed", s.Failed).Int("skipped", s.Skipped).Msg("batch finished")

	if next < len(paths) {
		return items, ctx.Err()
	}
	return items, nil
}

// Summarize counts the outcomes in items. Items without a reading count as
// skipped.
func Summarize(items []Item) Summary {
	var s Summary
	for _, it := range items {
		switch {
		case it.Reading == nil:
			s.Skipped++
		case it.Reading.OK():
			s.OK++
		default:
			s.Failed++
		}
	}
	return s
}
