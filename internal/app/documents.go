package app

import (
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleAddDocument registers uploaded-file metadata on a room and
// announces it. The bytes are already in the file store by the time
// this runs; the engine only coordinates the metadata.
func (c *Coordinator) handleAddDocument(m cmdAddDocument) docReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return docReply{Err: domain.ErrRoomNotFound}
	}
	if c.subjectOf(m.Actor) != r.HostSubject {
		return docReply{Err: domain.ErrNotHost}
	}
	doc := domain.NewDocument(r.ID, m.Name, m.URL, m.Size, c.subjectOf(m.Actor), c.now())
	r.Documents = append(r.Documents, doc)
	log.Info().Str("module", "app.documents").Str("room", string(r.ID)).Str("doc", string(doc.ID)).Int64("size", doc.Size).Msg("document shared")
	c.fanout(r, EvDocumentShared, DocumentPayload{Document: doc}, "")
	out := *doc
	return docReply{Doc: &out}
}
