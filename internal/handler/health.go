// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/olegiv/furnishop/internal/store"
	"github.com/olegiv/furnishop/internal/version"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// healthPingTimeout bounds the session database ping.
const healthPingTimeout = 2 * time.Second

// HealthHandler handles health check requests. Only the session database is
// probed; the marketplace API is never contacted.
type HealthHandler struct {
	db        *sql.DB
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, info version.Info) *HealthHandler {
	v := info.Version
	if v == "" {
		v = "dev"
	}
	return &HealthHandler{
		db:        db,
		version:   v,
		startTime: time.Now(),
	}
}

// HealthStatus is the body of a health response.
type HealthStatus struct {
	Status  string           `json:"status"`
	Uptime  string           `json:"uptime"`
	Version string           `json:"version"`
	Checks  map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r)

	status := HealthStatus{
		Status:  StatusHealthy,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: h.version,
		Checks:  map[string]Check{"session_db": dbCheck},
	}

	code := http.StatusOK
	if dbCheck.Status != StatusHealthy {
		status.Status = StatusDegraded
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// checkDatabase verifies session database connectivity.
func (h *HealthHandler) checkDatabase(r *http.Request) Check {
	start := time.Now()
	err := store.Ping(r.Context(), h.db, healthPingTimeout)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  StatusUnhealthy,
			Message: "session store unavailable",
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  StatusHealthy,
		Latency: latency.String(),
	}
}
