// Package app ties the locator to storage, plugins and live subscribers.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/segment"
	"github.com/ayusman/mapreader/internal/source"
	"github.com/ayusman/mapreader/internal/store"
)

// Sink receives every reading after it is recorded.
type Sink interface {
	Notify(ctx context.Context, rd *store.Reading) error
}

// Config holds configuration options for the application.
type Config struct {
	// Store persists readings and the colour profile. Nil keeps nothing.
	Store    *store.Store
	Pipeline locator.Config
	Sinks    []Sink
	// NewLocator builds the locator for a pipeline configuration. Nil uses
	// the OpenCV pipeline.
	NewLocator func(locator.Config) locator.Locator
	// Source opens images for ProcessFile. Nil reads the local filesystem.
	Source source.Source
}

// App is the main application that runs readings and distributes them.
type App struct {
	config     Config
	newLocator func(locator.Config) locator.Locator
	source     source.Source
	log        zerolog.Logger

	mu        sync.RWMutex
	pipeline  locator.Config
	locator   locator.Locator
	last      *store.Reading
	callbacks []func(*store.Reading)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	newLocator := config.NewLocator
	if newLocator == nil {
		newLocator = func(c locator.Config) locator.Locator { return locator.New(c) }
	}

	src := config.Source
	if src == nil {
		src = source.FileSource{}
	}

	return &App{
		config:     config,
		newLocator: newLocator,
		source:     src,
		log:        log.With().Str("module", "app").Logger(),
		pipeline:   config.Pipeline,
		locator:    newLocator(config.Pipeline),
	}
}

// LoadProfile applies the colour profile saved in the store, if any.
func (a *App) LoadProfile() error {
	if a.config.Store == nil {
		return nil
	}

	p, err := a.config.Store.Settings().GetProfile()
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	a.applyProfile(p)
	a.log.Info().Msg("loaded saved colour profile")
	return nil
}

// Profile returns the colour profile in use.
func (a *App) Profile() segment.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pipeline.Profile
}

// SetProfile validates and persists a colour profile. The next reading uses it.
func (a *App) SetProfile(p segment.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetProfile(p); err != nil {
			return err
		}
	}
	a.applyProfile(p)
	a.log.Info().Msg("colour profile updated")
	return nil
}

func (a *App) applyProfile(p segment.Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.Profile = p
	a.locator = a.newLocator(a.pipeline)
}

// Pipeline returns the pipeline configuration in use.
func (a *App) Pipeline() locator.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pipeline
}

// SetLocator replaces the locator implementation until the next profile change.
func (a *App) SetLocator(l locator.Locator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.locator = l
}

// Locator returns the locator in use.
func (a *App) Locator() locator.Locator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.locator
}

// AddSink registers another reading sink.
func (a *App) AddSink(s Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config.Sinks = append(a.config.Sinks, s)
}

// OnReading registers a callback invoked with every new reading.
func (a *App) OnReading(callback func(*store.Reading)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, callback)
}

// Last returns the most recent reading of this process, or nil.
func (a *App) Last() *store.Reading {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
