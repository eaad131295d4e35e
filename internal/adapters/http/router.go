package http

import (
	"context"
	"net/http"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/adapters/signal"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/app/orch"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/config"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const clientTokenSessionKey = "ct"

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable token kept in the
// cookie session. It only labels peers in logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenSessionKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenSessionKey, token)
			if err := session.Save(); err != nil {
				log.Debug().Err(err).Str("module", "adapters.http").Msg("client token not saved")
			}
		}
		c.Set(signal.ClientTokenKey, token)
		c.Next()
	}
}

// SetupRouter wires the relay websocket and the ops endpoints.
//   - GET / and /ws upgrade into the relay
//   - GET /health and /metrics are open
//   - /api/* requires the handshake header when enabled
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(StampHandshake(cfg.Handshake.Secret))

	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Str("module", "adapters.http").Msg("no cookie secret configured, client tokens will not survive restarts")
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("n3x_rtc", store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	ws := func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) {
			c.JSON(http.StatusUpgradeRequired, gin.H{"error": "websocket upgrade required"})
			return
		}
		ctrl.HandleSignal(ctx, c)
	}
	r.GET("/", ws)
	r.GET("/ws", ws)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"module":      cfg.Handshake.Module,
			"phase":       cfg.Handshake.Phase,
			"policy_hash": o.Handshake.Fingerprint(),
			"sessions":    o.Registry.Len(),
		})
	})
	if o.Metrics != nil {
		r.GET("/metrics", gin.WrapH(o.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.Handshake.HeaderCheck {
		api.Use(ValidateHandshake(cfg.Handshake.Secret, api.BasePath(), cfg.Handshake.BypassPaths))
	}

	// GET /api/sessions: list sessions
	api.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": o.Registry.List()})
	})

	// GET /api/sessions/:id: members of one session; unknown means empty
	api.GET("/sessions/:id", func(c *gin.Context) {
		id := domain.SessionID(c.Param("id"))
		members := []core.MemberDTO{}
		if s, ok := o.Registry.GetSession(id); ok {
			members = s.MembersSnapshot()
		}
		c.JSON(http.StatusOK, gin.H{"session": id, "members": members})
	})

	log.Info().Str("module", "adapters.http").Bool("header_check", cfg.Handshake.HeaderCheck).Msg("router setup")
	return r
}
