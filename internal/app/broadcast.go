package app

import (
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// fanout delivers one event to the room's current membership plus the
// host connection, minus exclude. The recipient list is snapshotted at
// call time; the frame is marshaled once. Slow receivers lose the frame
// rather than stalling the loop.
func (c *Coordinator) fanout(r *domain.Room, event string, data any, exclude domain.ConnID) core.PublishResult {
	f, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode failed")
		return core.PublishResult{}
	}
	seen := make(map[domain.ConnID]struct{}, len(r.Members)+1)
	targets := make([]domain.ConnID, 0, len(r.Members)+1)
	for _, mb := range r.Members {
		if _, dup := seen[mb.Conn]; dup {
			continue
		}
		seen[mb.Conn] = struct{}{}
		targets = append(targets, mb.Conn)
	}
	if r.HostConn != "" && r.HostActive {
		if _, dup := seen[r.HostConn]; !dup {
			targets = append(targets, r.HostConn)
		}
	}

	var res core.PublishResult
	for _, id := range targets {
		if id == exclude {
			continue
		}
		e, ok := c.conns[id]
		if !ok {
			continue
		}
		if err := e.sender.TrySend(f); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	if res.Dropped > 0 {
		log.Warn().Str("module", "app.broadcast").Str("room", string(r.ID)).Str("event", event).Int("dropped", res.Dropped).Msg("slow receivers dropped")
	}
	return res
}

func (c *Coordinator) handleSendMessage(m cmdSendMessage) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return domain.ErrInvalidPayload
	}
	if _, member := r.MemberByConn(e.id); !member && r.HostConn != e.id {
		return domain.ErrNotMember
	}
	if m.Text == "" || len(m.Text) > domain.MaxMessageLen {
		return domain.ErrInvalidPayload
	}
	if r.Kind == domain.KindEvent && !r.Settings.Chat {
		log.Debug().Str("module", "app.broadcast").Str("room", string(r.ID)).Msg("chat disabled, message dropped")
		return nil
	}
	msg := domain.Message{From: e.id, Name: c.nameOf(m.Actor), Text: m.Text, SentAt: c.now()}
	r.AppendMessage(msg)
	c.fanout(r, EvNewMessage, MessagePayload{RoomID: r.ID, Message: msg}, e.id)
	return nil
}

func (c *Coordinator) handleRaiseHand(m cmdRaiseHand) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return domain.ErrInvalidPayload
	}
	mb, ok := r.MemberByConn(e.id)
	if !ok {
		return domain.ErrNotMember
	}
	if r.Kind == domain.KindEvent && !r.Settings.Hands {
		log.Debug().Str("module", "app.broadcast").Str("room", string(r.ID)).Msg("hands disabled, toggle dropped")
		return nil
	}
	mb.HandRaised = m.Raised
	c.fanout(r, EvHandRaised, HandPayload{RoomID: r.ID, ConnectionID: e.id, Name: mb.Name, Raised: m.Raised}, e.id)
	return nil
}

func (c *Coordinator) handleToggleMedia(m cmdToggleMedia) error {
	r, ok := c.rooms[m.Room]
	if !ok {
		return domain.ErrRoomNotFound
	}
	e, ok := c.entryFor(m.Actor)
	if !ok {
		return domain.ErrInvalidPayload
	}
	mb, ok := r.MemberByConn(e.id)
	if !ok {
		return domain.ErrNotMember
	}
	switch m.Field {
	case MediaAudio:
		mb.Audio = m.Enabled
	case MediaVideo:
		mb.Video = m.Enabled
	case MediaScreenshare:
		mb.Screenshare = m.Enabled
	}
	c.fanout(r, EvMediaState, MediaStatePayload{
		RoomID:       r.ID,
		ConnectionID: e.id,
		Audio:        mb.Audio,
		Video:        mb.Video,
		Screenshare:  mb.Screenshare,
	}, e.id)
	return nil
}
