package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/dkeye/estimate/internal/adapters/signal"
	"github.com/dkeye/estimate/internal/app/orch"
	"github.com/dkeye/estimate/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a browser-scoped token in the session cookie.
// It only correlates log lines; room identity never depends on it.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("EstimateSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.Version})
	})

	index := filepath.Join(cfg.StaticPath, "index.html")
	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	r.GET("/room/:id", func(c *gin.Context) {
		c.File(index)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &roomHandlers{orch: o}
	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		RateLimit:      cfg.RateLimit,
		RateInterval:   cfg.RateInterval,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	api := r.Group("/api")
	api.GET("/rooms", h.list)
	api.POST("/rooms", h.create)
	api.GET("/rooms/:id", h.get)
	api.GET("/rooms/:id/qr", h.qr)
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client_token", c.GetString(clientTokenKey)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
