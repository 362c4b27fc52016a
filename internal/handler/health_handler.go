package handler

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apnadera/backend-go/internal/database"
)

// HealthHandler reports process liveness and store connectivity
type HealthHandler struct {
	db        *gorm.DB
	startedAt time.Time
	logger    *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// Check handles GET /health. A failing store check degrades the status
// to 503 so load balancers can rotate the instance out.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbStatus := "connected"

	if err := database.Ping(h.db); err != nil {
		h.logger.Error("❌ [HealthHandler] Database ping failed", "error", err)
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbStatus = "disconnected"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"database":  dbStatus,
		"memory": gin.H{
			"allocMB":      mem.Alloc / 1024 / 1024,
			"totalAllocMB": mem.TotalAlloc / 1024 / 1024,
			"sysMB":        mem.Sys / 1024 / 1024,
			"numGC":        mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}
