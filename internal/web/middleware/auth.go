package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/logging"
)

// RejectFunc writes the error response for a refused request.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireImportKey guards schedule changes. Reads (GET, HEAD, OPTIONS) pass
// untouched; any other method must send an X-API-Key matching one of keys,
// a map from importer name to key. The matching name is recorded with
// core.ContextWithImporter, so the import result and history say who
// imported, and is added to the request's log fields.
//
// With no keys configured every request passes.
func RequireImportKey(keys map[string]string, reject RejectFunc) func(http.Handler) http.Handler {
	names := make([]string, 0, len(keys))
	secrets := make([][]byte, 0, len(keys))
	for name, key := range keys {
		names = append(names, name)
		secrets = append(secrets, []byte(key))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secrets) == 0 || isRead(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				reject(w, r, core.ErrMissingImportKey)
				return
			}

			i := matchKey([]byte(presented), secrets)
			if i < 0 {
				reject(w, r, core.ErrInvalidImportKey)
				return
			}

			ctx := core.ContextWithImporter(r.Context(), names[i])
			ctx = logging.ContextWithFields(ctx, "importer", names[i])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// matchKey returns the index of the secret equal to key, or -1. Every secret
// is compared in constant time so the timing does not reveal which matched.
func matchKey(key []byte, secrets [][]byte) int {
	match := -1
	for i, s := range secrets {
		if subtle.ConstantTimeCompare(key, s) == 1 {
			match = i
		}
	}
	return match
}
