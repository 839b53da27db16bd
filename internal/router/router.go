package router

import (
	"github.com/gin-gonic/gin"

	"fundscope/internal/config"
	"fundscope/internal/handler"
	"fundscope/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	analysisH *handler.AnalysisHandler,
	contactH *handler.ContactHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Analysis runs
	analyses := v1.Group("/analyses")
	analyses.POST("", analysisH.StartRun)
	analyses.GET("", analysisH.ListRuns)
	analyses.GET("/:id", analysisH.GetRun)

	// Contact enrichment
	contacts := v1.Group("/contacts")
	contacts.POST("/search", contactH.Search)

	return r
}
