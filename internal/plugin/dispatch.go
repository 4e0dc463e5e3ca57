package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/store"
)

// Dispatcher sends readings to every subscribed plugin.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher over the plugins known to manager.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		log:      log.With().Str("module", "plugin").Logger(),
	}
}

// Notify runs each plugin subscribed to the reading's event, one after the
// other in name order. A failing plugin does not stop the others; all
// failures are joined into the returned error.
func (d *Dispatcher) Notify(ctx context.Context, rd *store.Reading) error {
	event := EventFor(rd)

	var errs []error
	for _, p := range d.manager.ForEvent(event) {
		req := &Request{Action: event, Reading: rd, Config: p.Manifest.Config}

		resp, err := d.executor.Execute(ctx, p, req)
		if err == nil && !resp.Success {
			err = errors.New(resp.Error)
		}
		if err != nil {
			d.log.Warn().Err(err).Str("plugin", p.Manifest.Name).Str("reading", rd.ID).Msg("plugin failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Manifest.Name, err))
			continue
		}
		d.log.Debug().Str("plugin", p.Manifest.Name).Str("reading", rd.ID).Msg("plugin notified")
	}
	return errors.Join(errs...)
}
