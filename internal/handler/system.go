package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SystemHandler serves health and readiness probes.
type SystemHandler struct {
	db          *sqlx.DB
	redisClient *redis.Client
	startTime   time.Time
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(db *sqlx.DB, redisClient *redis.Client) *SystemHandler {
	return &SystemHandler{
		db:          db,
		redisClient: redisClient,
		startTime:   time.Now(),
	}
}

// Health reports liveness plus dependency status. Degraded dependencies are
// reported but do not fail the probe.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.redisClient != nil {
		if err := h.redisClient.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unreachable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         checks,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"timestamp":      time.Now().UTC(),
	})
}
