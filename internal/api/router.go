package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/timmy/producelens/internal/api/handler"
	"github.com/timmy/producelens/internal/api/middleware"
	"github.com/timmy/producelens/internal/catalog"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
)

// Dependencies are the shared, read-only services the handlers use.
type Dependencies struct {
	Store    *catalog.Store
	Analyzer handler.Analyzer
	Logger   *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	maxUpload := cfg.Server.MaxUploadMB << 20
	r.MaxMultipartMemory = maxUpload

	tmpl, err := handler.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Logger))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.CORS(cfg.Server.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(deps.Store)
	predictHandler := handler.NewPredictHandler(deps.Analyzer, maxUpload)
	dashboardHandler := handler.NewDashboardHandler(deps.Analyzer, maxUpload)

	// Health check
	r.GET("/health", healthHandler.Health)
	r.GET("/catalog", healthHandler.Catalog)

	// Prediction API
	r.POST("/predict", predictHandler.Predict)

	// Dashboard
	r.GET("/", dashboardHandler.Index)
	r.POST("/analyze", dashboardHandler.Analyze)

	return r, nil
}
