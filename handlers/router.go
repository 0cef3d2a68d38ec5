package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes behind CORS.
func NewRouter(h *IconHandler, allowOrigins []string) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowOrigins
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Ico-Frames", "X-Ico-Sizes", "Content-Disposition"}
	router.Use(cors.New(config))

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/sizes", h.Sizes)
		api.POST("/ico", h.ConvertICO)
		api.POST("/icns", h.ConvertICNS)
		api.POST("/inspect", h.Inspect)
	}
	return router
}
