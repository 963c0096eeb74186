package ratelimit

import (
	"context"
	"net"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/pkg/logger"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Middleware rejects clients over quota with 429, keyed by scope and client IP.
type Middleware struct {
	*transport.BaseHandler
	limiter Limiter
}

func NewMiddleware(baseHandler *transport.BaseHandler, limiter Limiter) *Middleware {
	return &Middleware{BaseHandler: baseHandler, limiter: limiter}
}

func (m *Middleware) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil || m.limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			allowed, err := m.limiter.Allow(r.Context(), scope+":"+ip)
			if err != nil {
				logger.From(r.Context()).Error("rate limiter unavailable, denying request", "scope", scope, "error", err)
			}
			if !allowed {
				m.HandleServiceError(w, r, internal.NewRateLimitError("Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr, which chi's RealIP middleware has already resolved.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
