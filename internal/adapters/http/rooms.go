package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/auth"
	"github.com/Parth0603/backendServer/internal/domain"
)

type createRoomRequest struct {
	Kind        string           `json:"kind" binding:"required,oneof=teaching gaming event"`
	Title       string           `json:"title" binding:"max=120"`
	Description string           `json:"description" binding:"max=500"`
	Host        domain.Profile   `json:"host" binding:"required"`
	Settings    *domain.Settings `json:"settings"`
}

func (h *Handlers) actor(c *gin.Context) app.Actor {
	ident := auth.FromContext(c)
	return app.Actor{Subject: ident.Subject, Name: ident.Name}
}

// CreateRoom makes a room without binding a host connection; the host
// binds later over the socket with start-session.
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_PAYLOAD", "message": err.Error()})
		return
	}
	kind, err := domain.ParseRoomKind(req.Kind)
	if err != nil {
		renderError(c, err)
		return
	}
	room, err := h.Engine.CreateRoom(c.Request.Context(), h.actor(c), kind, req.Title, req.Description, req.Host, req.Settings)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	kind := domain.RoomKind(c.Query("kind"))
	if kind != "" {
		if _, err := domain.ParseRoomKind(string(kind)); err != nil {
			renderError(c, err)
			return
		}
	}
	rooms, err := h.Engine.ListRooms(c.Request.Context(), kind)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handlers) GetRoom(c *gin.Context) {
	room, polls, err := h.Engine.GetRoom(c.Request.Context(), domain.RoomID(c.Param("id")))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "polls": polls})
}
