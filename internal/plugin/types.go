// Package plugin discovers and runs external reading sinks. A plugin is an
// executable that receives one JSON request on stdin and answers with one JSON
// response on stdout.
package plugin

import (
	"encoding/json"

	"github.com/ayusman/mapreader/internal/store"
)

// Events a plugin can subscribe to.
const (
	// EventReading is sent for every successful reading.
	EventReading = "reading"
	// EventFailure is sent when the pipeline could not read an image.
	EventFailure = "failure"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
	// Config is passed through to the plugin with every request.
	Config json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the plugin subscribes to event. A manifest without
// events receives everything.
func (m Manifest) Handles(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action  string          `json:"action"`
	Reading *store.Reading  `json:"reading"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// EventFor returns the event a reading triggers.
func EventFor(rd *store.Reading) string {
	if rd.OK() {
		return EventReading
	}
	return EventFailure
}
