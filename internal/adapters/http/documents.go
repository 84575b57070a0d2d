package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/domain"
)

const maxUploadSize = 25 << 20 // 25 MiB

// UploadDocument accepts a multipart file, stores it on disk and
// registers it with the room so members get the document-shared event.
func (h *Handlers) UploadDocument(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_PAYLOAD", "message": "missing file field"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "INVALID_PAYLOAD", "message": "file too large"})
		return
	}

	stored, written, err := h.Store.Save(header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": "could not store file"})
		return
	}

	doc, err := h.Engine.AddDocument(c.Request.Context(), h.actor(c), room, header.Filename, "/files/"+stored, written)
	if err != nil {
		// The room rejected the document; the file on disk is orphaned.
		if rmErr := h.Store.Remove(stored); rmErr != nil {
			log.Warn().Err(rmErr).Str("module", "http").Str("file", stored).Msg("orphaned upload left on disk")
		}
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}
