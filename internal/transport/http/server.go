package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/config"
)

// NewServer builds the HTTP server: health check, WebSocket endpoint, and
// the REST query API.
func NewServer(router *chat.Router, registry *chat.Registry, history *chat.History, broker *Broker, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		fmt.Fprint(c.Writer, "ok")
	})

	engine.GET("/ws", gin.WrapH(NewWSHandler(router, history, broker, cfg, logger)))

	handlers := NewAPIHandlers(registry, history, logger)
	api := engine.Group("/api")
	{
		api.GET("/rooms", handlers.ListRooms)
		api.GET("/rooms/:room/occupants", handlers.RoomOccupants)
		api.GET("/rooms/:room/messages", handlers.RoomMessages)
		api.GET("/stats", handlers.Stats)
		api.GET("/users/:username", handlers.GetParticipant)
		api.PUT("/users/:username/role", handlers.UpdateRole)
		api.PUT("/users/:username/status", handlers.UpdateStatus)
		api.POST("/admin/reset", handlers.Reset)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
