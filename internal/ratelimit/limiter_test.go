package ratelimit_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/Ilan9903/Juris-IA/internal/ratelimit"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

var _ = Describe("FixedWindowLimiter", func() {
	var (
		ctx    context.Context
		server *miniredis.Miniredis
		client *redis.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: server.Addr()})
		DeferCleanup(client.Close)
	})

	It("allows up to the limit within a window", func() {
		limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 2, time.Minute)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 2; i++ {
			ok, err := limiter.Allow(ctx, "1.2.3.4")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		}
		ok, err := limiter.Allow(ctx, "1.2.3.4")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = limiter.Allow(ctx, "5.6.7.8")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("sets an expiry on the window counter", func() {
		limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 5, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		_, err = limiter.Allow(ctx, "ip")
		Expect(err).NotTo(HaveOccurred())

		keys := server.Keys()
		Expect(keys).To(HaveLen(1))
		Expect(server.TTL(keys[0])).To(BeNumerically(">", 0))
	})

	It("fails closed when redis is unreachable", func() {
		limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 5, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		server.Close()

		ok, err := limiter.Allow(ctx, "ip")
		Expect(err).To(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("validates its arguments", func() {
		_, err := ratelimit.NewFixedWindowLimiter(client, "test", 0, time.Minute)
		Expect(err).To(HaveOccurred())
		_, err = ratelimit.NewFixedWindowLimiter(nil, "test", 1, time.Minute)
		Expect(err).To(HaveOccurred())
	})

	It("rejects windows shorter than a millisecond", func() {
		_, err := ratelimit.NewFixedWindowLimiter(client, "test", 1, 500*time.Microsecond)
		Expect(err).To(MatchError(ContainSubstring("at least 1ms")))

		limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 1, time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		ok, err := limiter.Allow(ctx, "ip")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	Describe("Middleware", func() {
		It("returns 429 once the client exceeds the quota", func() {
			limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 1, time.Minute)
			Expect(err).NotTo(HaveOccurred())
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			mw := ratelimit.NewMiddleware(transport.NewBaseHandler(slogger), limiter)

			h := mw.Limit("login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			send := func(remote string) int {
				req := httptest.NewRequest(http.MethodPost, "/login", nil)
				req.RemoteAddr = remote
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				return w.Code
			}

			Expect(send("10.0.0.1:1234")).To(Equal(http.StatusNoContent))
			Expect(send("10.0.0.1:5678")).To(Equal(http.StatusTooManyRequests))
			Expect(send("10.0.0.2:1234")).To(Equal(http.StatusNoContent))
		})

		It("passes everything through without a limiter", func() {
			var mw *ratelimit.Middleware
			h := mw.Limit("login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})
})
