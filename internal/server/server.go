// Package server provides the HTTP server for the map reader.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/plugin"
	"github.com/ayusman/mapreader/internal/server/api"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// App runs readings. Without it only health and static files are served.
	App     *app.App
	Plugins *plugin.Manager
}

// Server represents the HTTP server for the map reader.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	live   *LiveHandler
	log    zerolog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.With().Str("module", "server").Logger(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.mux.Handle("/api/locate", api.NewLocateHandler(a))
		s.mux.Handle("/api/annotate", api.NewAnnotateHandler(a))
		s.mux.Handle("/api/profile", api.NewProfileHandler(a))

		if st := a.Store(); st != nil {
			readings := api.NewReadingHandler(st)
			s.mux.Handle("/api/readings", readings)
			s.mux.Handle("/api/readings/", readings)
		}

		s.live = NewLiveHandler()
		a.OnReading(s.live.Broadcast)
		s.mux.Handle("/api/live", s.live)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.live != nil {
		response["subscribers"] = s.live.Count()
	}
	if s.config.App != nil {
		if last := s.config.App.Last(); last != nil {
			response["last_reading"] = last.ID
		}
	}

	body, err := sonic.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and disconnects live subscribers.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// Close disconnects live subscribers.
func (s *Server) Close() {
	if s.live != nil {
		s.live.Close()
	}
}
