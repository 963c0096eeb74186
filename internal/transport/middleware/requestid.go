package middleware

import (
	"net/http"

	"github.com/Ilan9903/Juris-IA/pkg/logger"

	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(r.Context(), traceID)

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
