package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ICEServers hands clients the STUN/TURN set to build their peer
// connections with. The engine never dials these; peers do.
func (h *Handlers) ICEServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.ICE})
}
