package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mapreader/internal/store"
)

// ReadingHandler handles HTTP requests for reading history.
type ReadingHandler struct {
	store *store.Store
}

// NewReadingHandler creates a new ReadingHandler with the given store.
func NewReadingHandler(s *store.Store) *ReadingHandler {
	return &ReadingHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/readings or /api/readings/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/readings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listReadingsResponse struct {
	Readings []*store.Reading `json:"readings"`
}

// list handles GET /api/readings?limit=N, newest first.
func (h *ReadingHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	readings, err := h.store.Readings().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list readings")
		return
	}
	if readings == nil {
		readings = []*store.Reading{}
	}

	writeNegotiated(w, r, http.StatusOK, listReadingsResponse{Readings: readings})
}

// get handles GET /api/readings/{id}.
func (h *ReadingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rd, err := h.store.Readings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reading not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reading")
		return
	}

	writeNegotiated(w, r, http.StatusOK, rd)
}

// delete handles DELETE /api/readings/{id}.
func (h *ReadingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Readings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reading not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete reading")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
