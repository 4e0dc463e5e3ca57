package main

import (
	"errors"
	"fmt"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/config"
	"github.com/ayusman/mapreader/internal/plugin"
	"github.com/ayusman/mapreader/internal/publish"
	"github.com/ayusman/mapreader/internal/store"
)

// wireOptions selects the optional services of a command.
type wireOptions struct {
	record  bool
	plugins bool
}

// services is the application with everything attached to it.
type services struct {
	app       *app.App
	store     *store.Store
	plugins   *plugin.Manager
	publisher *publish.Publisher
}

func wire(cfg config.Config, opts wireOptions) (*services, error) {
	svc := &services{}

	if opts.record && cfg.DBPath != "" {
		st, err := store.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		svc.store = st
	}

	svc.app = app.New(app.Config{Store: svc.store, Pipeline: cfg.Pipeline})
	if err := svc.app.LoadProfile(); err != nil {
		svc.Close()
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if opts.plugins && cfg.PluginDir != "" {
		svc.plugins = plugin.NewManager(cfg.PluginDir)
		if err := svc.plugins.Discover(); err != nil {
			svc.Close()
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		svc.app.AddSink(plugin.NewDispatcher(svc.plugins, plugin.NewExecutor(cfg.PluginTimeoutMs)))
	}

	if cfg.PublishEndpoint != "" {
		pub, err := publish.New(cfg.PublishEndpoint)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("start publisher: %w", err)
		}
		svc.publisher = pub
		svc.app.AddSink(pub)
	}

	return svc, nil
}

// Close releases the store and the publisher.
func (s *services) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
