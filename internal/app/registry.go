package app

import (
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// connEntry tracks one live connection: its verified identity, its
// outbound half and the rooms it currently belongs to (hosting counts).
// The maps are loop-confined; no lock.
type connEntry struct {
	id      domain.ConnID
	subject domain.SubjectID
	name    string
	sender  core.Sender

	rooms    map[domain.RoomID]struct{}
	pending  map[domain.RoomID]struct{}
	approved map[domain.RoomID]struct{}
}

func (c *Coordinator) handleConnect(m cmdConnect) {
	if old, ok := c.conns[m.ID]; ok {
		// Same id reconnecting before the reconciler ran; drop the old half.
		old.sender.Close()
	}
	e := &connEntry{
		id:       m.ID,
		subject:  m.Subject,
		name:     m.Name,
		sender:   m.Sender,
		rooms:    make(map[domain.RoomID]struct{}),
		pending:  make(map[domain.RoomID]struct{}),
		approved: make(map[domain.RoomID]struct{}),
	}
	c.conns[m.ID] = e
	log.Info().Str("module", "app.registry").Str("conn", string(m.ID)).Str("subject", string(m.Subject)).Msg("connection registered")
	c.notify(m.ID, EvWelcome, WelcomePayload{ConnectionID: m.ID, SubjectID: m.Subject, Name: m.Name})
}

// entryFor resolves the acting connection. REST actors have no entry;
// callers treat (nil, false) as "no socket to ack".
func (c *Coordinator) entryFor(a Actor) (*connEntry, bool) {
	if a.Conn == "" {
		return nil, false
	}
	e, ok := c.conns[a.Conn]
	return e, ok
}

// subjectOf prefers the registry's verified identity over whatever the
// actor claims.
func (c *Coordinator) subjectOf(a Actor) domain.SubjectID {
	if e, ok := c.entryFor(a); ok {
		return e.subject
	}
	return a.Subject
}

func (c *Coordinator) nameOf(a Actor) string {
	if e, ok := c.entryFor(a); ok && e.name != "" {
		return e.name
	}
	return a.Name
}

// rememberName keeps the registry's display name in sync with the last
// profile the connection joined with.
func (e *connEntry) rememberName(name string) {
	if name != "" {
		e.name = name
	}
}

func (e *connEntry) joinedRoom(id domain.RoomID) {
	e.rooms[id] = struct{}{}
}

func (e *connEntry) leftRoom(id domain.RoomID) {
	delete(e.rooms, id)
}
