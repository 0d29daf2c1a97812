// File: internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/calmly-app/go-calmly/internal/services/ai"
)

const readinessTimeout = 5 * time.Second

// HealthHandler exposes liveness and readiness probes. Liveness only
// reports that the process is up; readiness checks the database and the
// generation endpoint.
type HealthHandler struct {
	db       *gorm.DB
	provider ai.CompletionProvider
}

func NewHealthHandler(db *gorm.DB, provider ai.CompletionProvider) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"database":   "ok",
		"generation": "ok",
	}
	status := http.StatusOK

	if err := h.pingDatabase(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := h.provider.HealthCheck(ctx); err != nil {
		checks["generation"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "degraded"
	}

	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
