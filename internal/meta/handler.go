package meta

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/config"
	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/database"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

var errPluginMissing = errors.New("timestamp plugin is not registered")

// Handler handles meta endpoints (health check)
type Handler struct {
	cfg *config.Config
	db  *database.DB
}

// NewHandler creates a new meta handler
func NewHandler(cfg *config.Config, db *database.DB) *Handler {
	return &Handler{
		cfg: cfg,
		db:  db,
	}
}

// Health checks database connectivity and reports the timestamp fields the
// plugin manages per table
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	service := gin.H{
		"name":        h.cfg.App.Name,
		"environment": h.cfg.App.Env,
	}

	start := time.Now()
	if err := h.db.HealthCheck(ctx); err != nil {
		slog.Error("Health check 실패", "error", err)

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": service,
			"checks": gin.H{
				"database": gin.H{
					"status": "down",
					"error":  err.Error(),
				},
			},
		})
		return
	}
	dbLatency := time.Since(start).Milliseconds()

	tsCheck, err := h.timestampCheck()
	if err != nil {
		slog.Error("타임스탬프 필드 확인 실패", "error", err)

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": service,
			"checks": gin.H{
				"timestamp": gin.H{
					"status": "down",
					"error":  err.Error(),
				},
			},
		})
		return
	}

	service["port"] = h.cfg.App.Port
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": service,
		"checks": gin.H{
			"database": gin.H{
				"status":     "up",
				"driver":     h.cfg.Database.Driver,
				"latency_ms": dbLatency,
			},
			"timestamp": tsCheck,
		},
	})
}

func (h *Handler) timestampCheck() (gin.H, error) {
	if h.db.Timestamps == nil {
		return nil, errPluginMissing
	}

	tables := gin.H{}
	for _, m := range model.Models() {
		fields, err := h.db.Timestamps.Registry().FieldsOf(m)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.String())
		}

		stmt := &gorm.Statement{DB: h.db.DB}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		tables[stmt.Schema.Table] = names
	}

	now, _ := timestamp.Format(h.db.NowFunc())
	return gin.H{
		"status": "up",
		"now":    now,
		"fields": tables,
	}, nil
}
