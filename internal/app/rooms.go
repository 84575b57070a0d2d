package app

import (
	"sort"
	"time"

	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomInfo is the listing view of a room, without member details.
type RoomInfo struct {
	ID          domain.RoomID     `json:"id"`
	Kind        domain.RoomKind   `json:"kind"`
	Title       string            `json:"title"`
	Status      domain.RoomStatus `json:"status"`
	MemberCount int               `json:"memberCount"`
	HostActive  bool              `json:"hostActive"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (c *Coordinator) handleCreateRoom(m cmdCreateRoom) roomReply {
	if err := m.Host.Validate(); err != nil {
		return roomReply{Err: err}
	}
	if len(m.Title) > domain.MaxTitleLen || len(m.Desc) > domain.MaxDescriptionLen {
		return roomReply{Err: domain.ErrInvalidPayload}
	}
	r := domain.NewRoom(m.Kind, m.Title, m.Desc, m.Host, c.subjectOf(m.Actor), c.now())
	if m.Settings != nil {
		r.Settings = *m.Settings
	}
	if e, ok := c.entryFor(m.Actor); ok {
		r.HostConn = e.id
		r.HostActive = true
		e.rememberName(m.Host.Name)
		e.joinedRoom(r.ID)
		// A gaming host plays too; it sits in the member list with
		// media flags like everyone else.
		if r.Kind == domain.KindGaming {
			r.AddMember(domain.NewMember(e.id, e.subject, m.Host, c.now()))
		}
	}
	c.rooms[r.ID] = r
	log.Info().Str("module", "app.rooms").Str("room", string(r.ID)).Str("kind", string(r.Kind)).Msg("room created")
	if m.Actor.Conn != "" {
		c.notify(m.Actor.Conn, EvRoomCreated, RoomSnapshot{Room: r, SelfID: m.Actor.Conn})
	}
	return roomReply{Room: r.Clone()}
}

// handleStartSession binds the acting socket as host. First bind for
// rooms created over REST, rebind for a returning teaching host, and the
// activation step for event rooms.
func (c *Coordinator) handleStartSession(m cmdStartSession) roomReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return roomReply{Err: domain.ErrRoomNotFound}
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return roomReply{Err: domain.ErrInvalidPayload}
	}
	if r.HostSubject != "" && e.subject != r.HostSubject {
		return roomReply{Err: domain.ErrNotHost}
	}
	if r.HostSubject == "" {
		r.HostSubject = e.subject
	}
	r.HostConn = e.id
	r.HostActive = true
	e.joinedRoom(r.ID)
	if r.Kind == domain.KindEvent {
		r.Activate(c.now())
	}
	if r.Kind == domain.KindGaming {
		if mb, ok := r.MemberBySubject(e.subject); ok {
			mb.Conn = e.id
		} else {
			r.AddMember(domain.NewMember(e.id, e.subject, domain.Profile{Name: r.HostName, Email: r.HostEmail}, c.now()))
		}
	}
	log.Info().Str("module", "app.rooms").Str("room", string(r.ID)).Str("conn", string(e.id)).Msg("host bound")
	c.notify(e.id, EvSessionStarted, RoomSnapshot{Room: r, SelfID: e.id, Polls: c.activePolls(r)})
	return roomReply{Room: r.Clone()}
}

func (c *Coordinator) handleEndSession(m cmdEndSession) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if c.subjectOf(m.Actor) != r.HostSubject {
		return domain.ErrNotHost
	}
	r.End()
	// Everyone hears the end, the acting host included.
	c.fanout(r, EvSessionEnded, RoomRefPayload{RoomID: r.ID}, "")
	c.deleteRoom(r)
	log.Info().Str("module", "app.rooms").Str("room", string(r.ID)).Msg("session ended")
	return nil
}

// deleteRoom tears a room down: poll timers stopped, registries cleaned,
// member connections detached. Notifications are the caller's business.
func (c *Coordinator) deleteRoom(r *domain.Room) {
	for _, pid := range r.Polls {
		c.dropPoll(pid)
	}
	for _, mb := range r.Members {
		if e, ok := c.conns[mb.Conn]; ok {
			e.leftRoom(r.ID)
		}
	}
	if e, ok := c.conns[r.HostConn]; ok {
		e.leftRoom(r.ID)
	}
	for conn := range c.requests[r.ID] {
		if e, ok := c.conns[conn]; ok {
			delete(e.pending, r.ID)
		}
	}
	delete(c.requests, r.ID)
	delete(c.rooms, r.ID)
}

func (c *Coordinator) handleGetRoom(m cmdGetRoom) snapshotReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return snapshotReply{Err: domain.ErrRoomNotFound}
	}
	polls := make([]*domain.Poll, 0, len(r.Polls))
	for _, pid := range r.Polls {
		if p, ok := c.polls[pid]; ok {
			polls = append(polls, p.Clone())
		}
	}
	return snapshotReply{Room: r.Clone(), Polls: polls}
}

func (c *Coordinator) handleListRooms(m cmdListRooms) []RoomInfo {
	out := make([]RoomInfo, 0, len(c.rooms))
	for _, r := range c.rooms {
		if m.Kind != "" && r.Kind != m.Kind {
			continue
		}
		out = append(out, RoomInfo{
			ID:          r.ID,
			Kind:        r.Kind,
			Title:       r.Title,
			Status:      r.Status,
			MemberCount: len(r.Members),
			HostActive:  r.HostActive,
			CreatedAt:   r.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// activePolls lists a room's running polls for join/start snapshots.
func (c *Coordinator) activePolls(r *domain.Room) []*domain.Poll {
	var out []*domain.Poll
	for _, pid := range r.Polls {
		if p, ok := c.polls[pid]; ok && p.Status == domain.PollActive {
			out = append(out, p)
		}
	}
	return out
}
