package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes body as a JSON response with the given status. A nil body
// sends the status line and headers only.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	// The status line is already on the wire; an encode failure here
	// cannot be reported to the client anymore.
	_ = json.NewEncoder(w).Encode(body)
}

// NoContent writes an empty 204 response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
