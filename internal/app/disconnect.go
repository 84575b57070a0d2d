package app

import (
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleDisconnect reconciles a dead connection against every room it
// touched. Runs at most once per connection: the entry is gone after.
func (c *Coordinator) handleDisconnect(m cmdDisconnect) {
	e, ok := c.conns[m.ID]
	if !ok {
		log.Debug().Str("module", "app.disconnect").Str("conn", string(m.ID)).Msg("already reconciled")
		return
	}
	for roomID := range e.rooms {
		if r, ok := c.rooms[roomID]; ok {
			c.detachFromRoom(e, r)
		}
	}
	for roomID := range e.pending {
		if reqs, ok := c.requests[roomID]; ok {
			delete(reqs, e.id)
		}
	}
	delete(c.conns, m.ID)
	e.sender.Close()
	log.Info().Str("module", "app.disconnect").Str("conn", string(m.ID)).Msg("connection reconciled")
}

// detachFromRoom applies the per-room half of reconciliation: host loss
// policy for hosts, removal plus a kind-appropriate notice for members.
// Also used verbatim by voluntary leaves.
func (c *Coordinator) detachFromRoom(e *connEntry, r *domain.Room) {
	if r.HostConn == e.id {
		switch HostLossPolicy(r.Kind) {
		case DeleteRoom:
			c.fanout(r, EvHostDisconnected, RoomRefPayload{RoomID: r.ID}, e.id)
			c.deleteRoom(r)
			log.Info().Str("module", "app.disconnect").Str("room", string(r.ID)).Msg("room deleted with host")
		case MarkInactive:
			r.HostConn = ""
			r.HostActive = false
			e.leftRoom(r.ID)
			log.Info().Str("module", "app.disconnect").Str("room", string(r.ID)).Msg("host inactive, room kept")
		case DetachHost:
			r.HostConn = ""
			r.HostActive = false
			e.leftRoom(r.ID)
			log.Info().Str("module", "app.disconnect").Str("room", string(r.ID)).Msg("host detached")
		}
		return
	}

	mb, ok := r.RemoveMemberByConn(e.id)
	e.leftRoom(r.ID)
	if !ok {
		return
	}
	c.fanout(r, leftEvent(r.Kind), MemberLeftPayload{RoomID: r.ID, ConnectionID: e.id, Name: mb.Name}, e.id)
}

func leftEvent(kind domain.RoomKind) string {
	switch kind {
	case domain.KindEvent:
		return EvAttendeeLeft
	case domain.KindTeaching:
		return EvStudentLeft
	default:
		return EvUserDisconnected
	}
}
