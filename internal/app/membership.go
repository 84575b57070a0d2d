package app

import (
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoinRoom runs the kind-specific join workflow. Event rooms gate
// on active status, gaming rooms replace same-name members in place,
// teaching rooms open a host-approval round instead of appending.
func (c *Coordinator) handleJoinRoom(m cmdJoinRoom) roomReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return roomReply{Err: domain.ErrRoomNotFound}
	}
	if err := m.Profile.Validate(); err != nil {
		return roomReply{Err: err}
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return roomReply{Err: domain.ErrInvalidPayload}
	}
	e.rememberName(m.Profile.Name)

	switch r.Kind {
	case domain.KindEvent:
		return c.joinEvent(r, e, m.Profile)
	case domain.KindGaming:
		return c.joinGaming(r, e, m.Profile)
	default:
		return c.requestTeachingJoin(r, e, m.Profile)
	}
}

func (c *Coordinator) joinEvent(r *domain.Room, e *connEntry, p domain.Profile) roomReply {
	if r.Status != domain.RoomActive {
		return roomReply{Err: domain.ErrRoomNotActive}
	}
	mb := domain.NewMember(e.id, e.subject, p, c.now())
	r.AddMember(mb)
	e.joinedRoom(r.ID)
	log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(e.id)).Msg("attendee joined")
	c.fanout(r, EvAttendeeJoined, MemberPayload{RoomID: r.ID, Member: mb}, e.id)
	c.notify(e.id, EvRoomJoined, RoomSnapshot{Room: r, SelfID: e.id, HostID: r.HostConn, Polls: c.activePolls(r)})
	return roomReply{Room: r.Clone()}
}

func (c *Coordinator) joinGaming(r *domain.Room, e *connEntry, p domain.Profile) roomReply {
	// Reconnects come back under the same display name; the stale entry
	// is replaced, never duplicated.
	if old, ok := r.MemberByName(p.Name); ok {
		r.RemoveMemberByConn(old.Conn)
		if oe, ok := c.conns[old.Conn]; ok && old.Conn != e.id {
			oe.leftRoom(r.ID)
		}
		log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("name", p.Name).Msg("gaming member replaced")
	}
	mb := domain.NewMember(e.id, e.subject, p, c.now())
	r.AddMember(mb)
	e.joinedRoom(r.ID)
	c.fanout(r, EvUserConnected, MemberPayload{RoomID: r.ID, Member: mb}, e.id)
	// The joiner gets the peers it must dial, not its own entry.
	snap := r.Clone()
	snap.RemoveMemberByConn(e.id)
	c.notify(e.id, EvRoomJoined, RoomSnapshot{Room: snap, SelfID: e.id, HostID: r.HostConn, Polls: c.activePolls(r)})
	return roomReply{Room: r.Clone()}
}

func (c *Coordinator) requestTeachingJoin(r *domain.Room, e *connEntry, p domain.Profile) roomReply {
	req := &domain.JoinRequest{
		Conn:      e.id,
		Subject:   e.subject,
		Room:      r.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: c.now(),
	}
	if c.requests[r.ID] == nil {
		c.requests[r.ID] = make(map[domain.ConnID]*domain.JoinRequest)
	}
	c.requests[r.ID][e.id] = req
	e.pending[r.ID] = struct{}{}
	log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(e.id)).Msg("join requested")
	if r.HostActive {
		c.notify(r.HostConn, EvJoinRequested, JoinRequestedPayload{Request: req})
	}
	c.notify(e.id, EvJoinPending, RoomRefPayload{RoomID: r.ID})
	return roomReply{}
}

// handleApproveJoin consumes a pending request and invites the requester
// to confirm. It never appends a member itself.
func (c *Coordinator) handleApproveJoin(m cmdApproveJoin) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if c.subjectOf(m.Actor) != r.HostSubject {
		return domain.ErrNotHost
	}
	req, ok := c.requests[r.ID][m.Requester]
	if !ok {
		return domain.ErrInvalidPayload
	}
	delete(c.requests[r.ID], m.Requester)
	if e, ok := c.conns[req.Conn]; ok {
		delete(e.pending, r.ID)
		e.approved[r.ID] = struct{}{}
	}
	log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(req.Conn)).Msg("join approved")
	c.notify(req.Conn, EvJoinApproved, JoinApprovedPayload{RoomID: r.ID, HostID: r.HostConn})
	return nil
}

func (c *Coordinator) handleRejectJoin(m cmdRejectJoin) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if c.subjectOf(m.Actor) != r.HostSubject {
		return domain.ErrNotHost
	}
	req, ok := c.requests[r.ID][m.Requester]
	if !ok {
		return domain.ErrInvalidPayload
	}
	delete(c.requests[r.ID], m.Requester)
	if e, ok := c.conns[req.Conn]; ok {
		delete(e.pending, r.ID)
	}
	log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(req.Conn)).Msg("join rejected")
	c.notify(req.Conn, EvJoinRejected, RoomRefPayload{RoomID: r.ID, Reason: m.Reason})
	return nil
}

// handleConfirmJoin performs the teaching append. Idempotent by subject:
// a returning student only gets its connection id refreshed.
func (c *Coordinator) handleConfirmJoin(m cmdConfirmJoin) roomReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return roomReply{Err: domain.ErrRoomNotFound}
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return roomReply{Err: domain.ErrInvalidPayload}
	}
	if err := m.Profile.Validate(); err != nil {
		return roomReply{Err: err}
	}
	e.rememberName(m.Profile.Name)

	if mb, ok := r.MemberBySubject(e.subject); ok {
		if mb.Conn != e.id {
			if oe, ok := c.conns[mb.Conn]; ok {
				oe.leftRoom(r.ID)
			}
			mb.Conn = e.id
		}
		mb.Name = m.Profile.Name
		e.joinedRoom(r.ID)
		log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(e.id)).Msg("student rebound")
		c.notify(e.id, EvRoomJoined, RoomSnapshot{Room: r, SelfID: e.id, HostID: r.HostConn, Polls: c.activePolls(r)})
		return roomReply{Room: r.Clone()}
	}

	if _, ok := e.approved[r.ID]; !ok {
		return roomReply{Err: domain.ErrNotMember}
	}
	delete(e.approved, r.ID)
	mb := domain.NewMember(e.id, e.subject, m.Profile, c.now())
	r.AddMember(mb)
	e.joinedRoom(r.ID)
	log.Info().Str("module", "app.membership").Str("room", string(r.ID)).Str("conn", string(e.id)).Msg("student joined")
	c.fanout(r, EvStudentJoined, MemberPayload{RoomID: r.ID, Member: mb}, e.id)
	c.notify(e.id, EvRoomJoined, RoomSnapshot{Room: r, SelfID: e.id, HostID: r.HostConn, Polls: c.activePolls(r)})
	return roomReply{Room: r.Clone()}
}

// handleLeaveRoom is a voluntary exit: the same per-room step the
// reconciler takes, without dropping the connection.
func (c *Coordinator) handleLeaveRoom(m cmdLeaveRoom) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return domain.ErrInvalidPayload
	}
	c.detachFromRoom(e, r)
	return nil
}
