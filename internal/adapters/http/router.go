// Package http wires HTTP routes (REST + WS + static) with the
// orchestrator and transport.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/verock/streamcast/internal/adapters"
	"github.com/verock/streamcast/internal/app"
	"github.com/verock/streamcast/internal/config"
	"github.com/verock/streamcast/internal/library"
)

// SetupRouter builds the gin engine:
// - /ws is the websocket event channel
// - /thumbnails serves the media directory as static content
// - REST mirrors of the discovery events live under /api/*
func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, lib *library.Library) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/thumbnails", cfg.MediaDir)
	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("media_dir", cfg.MediaDir).Msg("router setup")

	ctl := &adapters.EventController{Orch: orch, Library: lib, Cfg: cfg}
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleEvents(ctx, c)
	})

	api := r.Group("/api")

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	})

	api.GET("/streamers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"streamers": orch.LiveStreamers()})
	})

	api.GET("/videos", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"videos": lib.List()})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": orch.Registry.Count()})
	})

	r.GET("/metrics", gin.WrapH(orch.Metrics.Handler(func() {
		orch.Metrics.SetActiveConnections(orch.Registry.Count())
		orch.Metrics.SetActiveRooms(orch.Rooms.Count())
	})))

	return r
}
