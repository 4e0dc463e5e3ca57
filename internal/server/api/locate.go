package api

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/source"
	"github.com/ayusman/mapreader/internal/store"
)

// MaxImageBytes bounds the size of an uploaded image.
const MaxImageBytes = 32 << 20

// LocateHandler handles POST /api/locate. The request body is an encoded
// image; the optional "source" query parameter names it in the history.
type LocateHandler struct {
	app *app.App
}

// NewLocateHandler creates a new LocateHandler for the given app.
func NewLocateHandler(a *app.App) *LocateHandler {
	return &LocateHandler{app: a}
}

type failedReadingResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Reading *store.Reading `json:"reading,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *LocateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	img, err := source.Decode(data)
	if err != nil {
		img.Close()
		writeError(w, http.StatusBadRequest, "Invalid image")
		return
	}
	defer img.Close()

	name := r.URL.Query().Get("source")
	if name == "" {
		name = "upload"
	}
	name = path.Base(name)

	rd, err := h.app.Process(r.Context(), name, img)
	switch {
	case err == nil:
		writeNegotiated(w, r, http.StatusOK, rd)
	case locator.IsInputError(err):
		writeNegotiated(w, r, http.StatusUnprocessableEntity, failedReadingResponse{
			Error:   err.Error(),
			Kind:    locator.Kind(err),
			Reading: rd,
		})
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process image")
	}
}
