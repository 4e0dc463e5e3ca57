package api

import (
	"io"
	"net/http"

	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/mapframe"
	"github.com/ayusman/mapreader/internal/source"
)

// AnnotateHandler handles POST /api/annotate: it locates the pointer in the
// uploaded image and returns the image as JPEG with the heading and north
// drawn on it. Nothing is recorded.
type AnnotateHandler struct {
	app *app.App
}

// NewAnnotateHandler creates a new AnnotateHandler for the given app.
func NewAnnotateHandler(a *app.App) *AnnotateHandler {
	return &AnnotateHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
func (h *AnnotateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImageBytes))
	if err != nil {
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

	// Pixel coordinates of a rectified map do not refer to the upload.
	if h.app.Pipeline().Map.Mode == mapframe.ModeDetect {
		writeError(w, http.StatusConflict, "Annotation needs the whole-image map frame")
		return
	}

	res, err := h.app.Locator().Locate(img)
	if err != nil {
		if locator.IsInputError(err) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: locator.Kind(err)})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	locator.Annotate(&img, res)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode image")
		return
	}
	defer buf.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.GetBytes())
}
