package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/heartmarshall/tjdict-backend/pkg/ctxutil"
)

// writeError writes the same {"error", "request_id"} body the REST
// handlers use, so clients see one error shape whichever layer rejected
// the request.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
		"error":      message,
		"request_id": ctxutil.RequestIDFromCtx(r.Context()),
	})
}
