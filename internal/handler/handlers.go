package handlers

import (
	"suraksha/internal/device"
	"suraksha/internal/emergency"
	"suraksha/internal/store"
	"suraksha/pkg/cache"
	"suraksha/pkg/config"
	"suraksha/pkg/metrics"
	"suraksha/pkg/middleware"
	"suraksha/pkg/sse"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	store     *store.Store
	orch      *emergency.Orchestrator
	hub       *sse.Hub
	cache     cache.Cache
	locations *device.LocationGateway
	media     *device.MediaGateway
	cfg       *config.Config
}

func New(st *store.Store, orch *emergency.Orchestrator, hub *sse.Hub, c cache.Cache,
	locations *device.LocationGateway, media *device.MediaGateway, cfg *config.Config) *Handlers {
	return &Handlers{store: st, orch: orch, hub: hub, cache: c, locations: locations, media: media, cfg: cfg}
}

// Register mounts every route. The SOS paths carry no rate limit; auth does.
func (h *Handlers) Register(r *gin.Engine) {
	r.Use(sessions.Sessions("suraksha", cookie.NewStore([]byte(h.cfg.SessionSecret))))
	r.Use(metrics.Middleware())

	r.GET("/healthz", h.HealthCheck)
	r.GET("/metrics", metrics.Handler())

	api := r.Group(h.cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", middleware.RateLimit("10-M"), h.RegisterUser)
	auth.POST("/login", middleware.RateLimit("10-M"), h.Login)
	auth.POST("/logout", h.Logout)

	priv := api.Group("")
	priv.Use(middleware.Auth(h.cfg.JWTSecret))
	{
		priv.GET("/auth/me", h.Me)

		priv.GET("/profile", h.GetProfile)
		priv.PUT("/profile", h.UpdateProfile)
		priv.PUT("/profile/contacts", h.ReplaceContacts)

		priv.POST("/emergency/hold/press", h.HoldPress)
		priv.POST("/emergency/hold/release", h.HoldRelease)
		priv.GET("/emergency/hold", h.HoldProgress)
		priv.POST("/emergency/activate", h.Activate)

		priv.POST("/timer/start", h.TimerStart)
		priv.POST("/timer/checkin", h.TimerCheckIn)
		priv.POST("/timer/stop", h.TimerStop)
		priv.GET("/timer", h.TimerStatus)

		priv.GET("/sessions", h.ListSessions)
		priv.GET("/sessions/:id", h.GetSession)
		priv.POST("/sessions/:id/resolve", h.ResolveSession)
		priv.POST("/sessions/:id/cancel", h.CancelSession)
		priv.POST("/sessions/:id/video", h.CaptureVideo)
		priv.GET("/sessions/:id/recordings", h.ListRecordings)
		priv.GET("/sessions/:id/stream", h.StreamSession)

		priv.GET("/locations/recent", h.RecentLocations)
		priv.GET("/dashboard", h.Dashboard)

		priv.POST("/device/position", h.PushPosition)
		priv.POST("/device/media", h.UploadMedia)

		priv.GET("/recordings/:id/file", h.DownloadRecording)
	}
}
