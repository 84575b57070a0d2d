// Package http is the REST collaborator surface. It shares the one
// engine instance with the WebSocket adapter; nothing here owns state.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/adapters/signal"
	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/auth"
	"github.com/Parth0603/backendServer/internal/config"
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/Parth0603/backendServer/internal/storage"
)

// Handlers bundles what the REST endpoints need.
type Handlers struct {
	Engine *app.Coordinator
	Store  *storage.Store
	ICE    []webrtc.ICEServer
}

func SetupRouter(ctx context.Context, cfg *config.Config, engine *app.Coordinator, ctl *signal.Controller, store *storage.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CoordSessions", sessStore))

	var verifier *auth.Verifier
	if cfg.AuthMode == "jwt" {
		verifier = auth.NewVerifier(cfg.Secret)
	}
	identity := auth.Middleware(verifier)

	r.Static("/static", cfg.StaticPath)
	r.StaticFile("/", cfg.StaticPath+"/index.html")
	r.Static("/files", store.Dir())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Str("uploads", store.Dir()).Msg("router setup")

	r.GET("/ws", identity, func(c *gin.Context) {
		ctl.Handle(ctx, c)
	})

	h := &Handlers{Engine: engine, Store: store, ICE: cfg.ICE()}
	api := r.Group("/api", identity)
	api.POST("/rooms", h.CreateRoom)
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:id", h.GetRoom)
	api.POST("/rooms/:id/polls", h.CreatePoll)
	api.POST("/rooms/:id/documents", h.UploadDocument)
	api.GET("/ice", h.ICEServers)

	return r
}

// renderError maps engine errors onto HTTP statuses; the wire codes
// come from the shared taxonomy.
func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrPollNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyVoted), errors.Is(err, domain.ErrRoomNotActive), errors.Is(err, domain.ErrPollNotActive):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOption), errors.Is(err, domain.ErrInvalidPayload):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotHost), errors.Is(err, domain.ErrNotMember):
		status = http.StatusForbidden
	}
	code := domain.ErrorCode(err)
	if code == "" {
		code = "INTERNAL"
	}
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}
