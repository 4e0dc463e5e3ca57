// Package api provides HTTP API handlers for the map reader.
package api

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/fxamacker/cbor/v2"
)

// ContentTypeCBOR is the media type of CBOR responses.
const ContentTypeCBOR = "application/cbor"

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var cborMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return
	}
	body, err := sonic.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeCBOR writes a CBOR response with the given status code.
func writeCBOR(w http.ResponseWriter, status int, data interface{}) {
	body, err := cborMode.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeCBOR)
	w.WriteHeader(status)
	w.Write(body)
}

// writeNegotiated writes CBOR when the client accepts it and JSON otherwise.
func writeNegotiated(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeCBOR) {
		writeCBOR(w, status, data)
		return
	}
	writeJSON(w, status, data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
