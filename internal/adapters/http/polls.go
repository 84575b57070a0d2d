package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Parth0603/backendServer/internal/domain"
)

type createPollRequest struct {
	Question        string   `json:"question" binding:"required,max=300"`
	Options         []string `json:"options" binding:"required,min=2,max=10"`
	DurationSeconds int      `json:"durationSeconds" binding:"omitempty,min=1,max=3600"`
}

// CreatePoll starts a poll over REST. The fan-out to connected members
// happens inside the engine, same as for socket-created polls.
func (h *Handlers) CreatePoll(c *gin.Context) {
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_PAYLOAD", "message": err.Error()})
		return
	}
	room := domain.RoomID(c.Param("id"))
	d := time.Duration(req.DurationSeconds) * time.Second
	poll, err := h.Engine.CreatePoll(c.Request.Context(), h.actor(c), room, req.Question, req.Options, d)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"poll": poll})
}
