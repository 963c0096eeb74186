package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows credentialed requests from the configured origins only. A "*" entry is ignored:
// the session cookie must never be readable from an arbitrary site.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || o == "*" {
			continue
		}
		allowed[o] = struct{}{}
	}

	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", TraceIDHeader},
		ExposedHeaders:   []string{TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
