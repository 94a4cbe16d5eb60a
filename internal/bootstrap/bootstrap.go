package bootstrap

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/changhyeonkim/gorm-timestamp/internal/config"
	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/middleware"
)

// Bootstrap builds the gin engine shared by every route set
type Bootstrap struct {
	cfg *config.Config
}

// NewBootstrap creates a new bootstrap instance
func NewBootstrap(cfg *config.Config) *Bootstrap {
	return &Bootstrap{
		cfg: cfg,
	}
}

// SetupEngine creates a gin engine with recovery, request id, CORS, timeout
// and request logging, in that order
func (b *Bootstrap) SetupEngine() *gin.Engine {
	if b.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// request logs go through slog
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard

	engine := gin.New()
	engine.Use(gin.CustomRecovery(b.recoveryHandler))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(b.cfg))
	engine.Use(middleware.Timeout(middleware.DefaultTimeout))
	engine.Use(middleware.LoggerMiddleware())

	return engine
}

// recoveryHandler answers a panic with the shared internal error response
func (b *Bootstrap) recoveryHandler(c *gin.Context, recovered any) {
	logger.FromContext(c.Request.Context()).Error("Panic Recovered",
		slog.Any("error", recovered),
		slog.String("path", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.String("request_id", middleware.GetRequestID(c)),
	)

	resp := sharedError.InternalServerError
	c.AbortWithStatusJSON(resp.Status, resp)
}
