package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/ayusman/mapreader/internal/app"
)

// ProfileHandler handles GET and PUT /api/profile, the colour profile used
// for segmentation.
type ProfileHandler struct {
	app *app.App
}

// NewProfileHandler creates a new ProfileHandler for the given app.
func NewProfileHandler(a *app.App) *ProfileHandler {
	return &ProfileHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Profile())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update decodes the body over the current profile, so omitted classes keep
// their range.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	p := h.app.Profile()
	if err := sonic.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.SetProfile(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

