package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

type HealthHandler struct {
	db    *sql.DB
	redis redis.Cmdable
}

// NewHealthHandler checks db and, when rdb is non-nil, redis.
func NewHealthHandler(db *sql.DB, rdb redis.Cmdable) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// pingHandler only says the process is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler checks the backing services
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"postgres": check(func() error { return h.db.PingContext(ctx) }),
	}
	if h.redis != nil {
		components["redis"] = check(func() error { return h.redis.Ping(ctx).Err() })
	}

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: components,
	}
	for _, entry := range components {
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func check(ping func() error) CheckEntry {
	start := time.Now()
	err := ping()

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
