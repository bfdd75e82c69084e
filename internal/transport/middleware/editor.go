package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/tjdict-backend/pkg/ctxutil"
)

// Editor reads the editor id forwarded by the upstream auth layer in header
// and stores it in the request context. Requests without the header pass
// through anonymously; a malformed value is rejected with 400.
func Editor(header string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid editor id", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxutil.WithEditorID(r.Context(), id)))
		})
	}
}

// RequireEditor rejects requests that carry no editor id with 401.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.EditorIDFromCtx(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, "editor required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
