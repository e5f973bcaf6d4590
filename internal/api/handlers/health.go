package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"adminconsole/internal/transport"
)

// Pinger is a dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      *sql.DB
	redis   Pinger
	monitor *transport.Monitor
}

// NewHealthHandler builds the health check. redis may be nil when
// broadcasting is disabled.
func NewHealthHandler(db *sql.DB, redis Pinger, monitor *transport.Monitor) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, monitor: monitor}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	unhealthy := false

	if err := h.db.PingContext(ctx); err != nil {
		checks["session_db"] = "unhealthy: " + err.Error()
		unhealthy = true
	} else {
		checks["session_db"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["broadcast"] = "unhealthy: " + err.Error()
			unhealthy = true
		} else {
			checks["broadcast"] = "healthy"
		}
	}

	if h.monitor.Status().Degraded {
		checks["backend"] = "degraded"
	} else {
		checks["backend"] = "healthy"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if unhealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if checks["backend"] == "degraded" {
		status = "degraded"
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// StatusHandler exposes the system-degraded signal to the browser shell.
type StatusHandler struct {
	monitor *transport.Monitor
}

func NewStatusHandler(monitor *transport.Monitor) *StatusHandler {
	return &StatusHandler{monitor: monitor}
}

func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", h.monitor.Status(), nil)
}

// Clear acknowledges the degraded banner.
func (h *StatusHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.monitor.Clear()
	writeData(w, http.StatusOK, "", h.monitor.Status(), nil)
}
