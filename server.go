package main

import (
	"log"

	"ico-convert/config"
	"ico-convert/handlers"
)

func runServer(cfg config.Config) error {
	iconHandler, err := handlers.NewIconHandler(cfg)
	if err != nil {
		return err
	}
	router := handlers.NewRouter(iconHandler, cfg.Server.AllowOrigins)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/ico     - Convert an image to a multi-size .ico")
	log.Printf("  POST /api/v1/icns    - Convert an image to a macOS .icns")
	log.Printf("  POST /api/v1/inspect - List the frames of an .ico")
	log.Printf("  GET  /api/v1/sizes   - Default and available sizes")
	log.Printf("  GET  /api/v1/health  - Health check")
	log.Printf("Default sizes: %v, filter: %s, max upload: %dMB", cfg.Icon.Sizes, cfg.Icon.Filter, cfg.Server.MaxUploadMB)

	return router.Run(":" + cfg.Server.Port)
}
