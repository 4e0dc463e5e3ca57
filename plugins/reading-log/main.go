// Package main provides a plugin that appends readings to a CSV file.
//
// Build it next to its manifest:
//
//	go build -o plugins/reading-log/reading-log ./plugins/reading-log
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// Reading carries the fields of a stored reading this plugin logs.
type Reading struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Kind      string    `json:"kind"`
	TipX      float64   `json:"tip_x"`
	TipY      float64   `json:"tip_y"`
	Bearing   float64   `json:"bearing"`
	CreatedAt time.Time `json:"created_at"`
}

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Reading *Reading        `json:"reading"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config is the plugin configuration from the manifest.
type Config struct {
	// Path of the CSV file, relative to the plugin directory.
	Path string `json:"path"`
}

var header = []string{"id", "source", "status", "kind", "tip_x", "tip_y", "bearing", "created_at"}

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		writeResponse(fmt.Errorf("failed to read request: %w", err))
		return
	}

	var req Request
	if err := sonic.Unmarshal(data, &req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	writeResponse(handle(&req))
}

func handle(req *Request) error {
	switch req.Action {
	case "reading", "failure":
	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}
	if req.Reading == nil {
		return errors.New("request has no reading")
	}

	cfg := Config{Path: "readings.csv"}
	if len(req.Config) > 0 {
		if err := sonic.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return appendRow(cfg.Path, row(req))
}

func row(req *Request) []string {
	rd := req.Reading
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	return []string{
		rd.ID,
		rd.Source,
		rd.Status,
		rd.Kind,
		f(rd.TipX),
		f(rd.TipY),
		f(rd.Bearing),
		rd.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func appendRow(path string, record []string) error {
	info, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	out, _ := sonic.Marshal(resp)
	os.Stdout.Write(out)
}
