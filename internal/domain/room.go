package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	RoomID   string
	RoomKind string
)

const (
	KindTeaching RoomKind = "teaching"
	KindGaming   RoomKind = "gaming"
	KindEvent    RoomKind = "event"
)

type RoomStatus string

const (
	RoomCreated RoomStatus = "created"
	RoomActive  RoomStatus = "active"
	RoomEnded   RoomStatus = "ended"
)

const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 500
	MaxMessageLen     = 2000
)

var ErrBadRoomKind = fmt.Errorf("unknown room kind: %w", ErrInvalidPayload)

// ParseRoomKind validates kind strings coming off the wire.
func ParseRoomKind(s string) (RoomKind, error) {
	switch RoomKind(s) {
	case KindTeaching, KindGaming, KindEvent:
		return RoomKind(s), nil
	}
	return "", ErrBadRoomKind
}

// NewRoomID returns a fresh kind-prefixed identifier, e.g. "event-3fa85f64".
func NewRoomID(kind RoomKind) RoomID {
	return RoomID(string(kind) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Settings are per-room feature gates. Gates apply to event rooms;
// other kinds keep them for the snapshot but do not consult them.
type Settings struct {
	Chat      bool `json:"chat"`
	Hands     bool `json:"hands"`
	Documents bool `json:"documents"`
	Polls     bool `json:"polls"`
}

func DefaultSettings() Settings {
	return Settings{Chat: true, Hands: true, Documents: true, Polls: true}
}

// Message is one chat entry in a room's log.
type Message struct {
	From   ConnID    `json:"from"`
	Name   string    `json:"name"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// Room is the coordination state of one session. The kind never changes
// after creation. All mutation happens on the coordinator goroutine.
type Room struct {
	ID          RoomID     `json:"id"`
	Kind        RoomKind   `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      RoomStatus `json:"status"`
	Settings    Settings   `json:"settings"`

	HostConn    ConnID    `json:"-"`
	HostSubject SubjectID `json:"-"`
	HostName    string    `json:"hostName"`
	HostEmail   string    `json:"-"`
	HostActive  bool      `json:"hostActive"`

	Members   []*Member   `json:"members"`
	Messages  []Message   `json:"-"`
	Documents []*Document `json:"documents"`
	Polls     []PollID    `json:"polls"`

	CreatedAt   time.Time `json:"createdAt"`
	ActivatedAt time.Time `json:"activatedAt,omitzero"`
}

// NewRoom builds a room of the given kind. Teaching and gaming rooms are
// active immediately; event rooms stay created until the host starts them.
func NewRoom(kind RoomKind, title, description string, host Profile, subject SubjectID, now time.Time) *Room {
	r := &Room{
		ID:          NewRoomID(kind),
		Kind:        kind,
		Title:       title,
		Description: description,
		Status:      RoomCreated,
		Settings:    DefaultSettings(),
		HostSubject: subject,
		HostName:    host.Name,
		HostEmail:   host.Email,
		CreatedAt:   now,
	}
	if kind != KindEvent {
		r.Activate(now)
	}
	return r
}

func (r *Room) Activate(now time.Time) {
	if r.Status != RoomCreated {
		return
	}
	r.Status = RoomActive
	r.ActivatedAt = now
}

func (r *Room) End() {
	r.Status = RoomEnded
}

func (r *Room) MemberByConn(id ConnID) (*Member, bool) {
	for _, m := range r.Members {
		if m.Conn == id {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) MemberBySubject(id SubjectID) (*Member, bool) {
	for _, m := range r.Members {
		if m.Subject == id {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) MemberByName(name string) (*Member, bool) {
	for _, m := range r.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// AddMember appends, dropping any stale entry with the same connection id
// first so the no-duplicate-connection invariant holds.
func (r *Room) AddMember(m *Member) {
	r.RemoveMemberByConn(m.Conn)
	r.Members = append(r.Members, m)
}

// RemoveMemberByConn detaches a member and reports whether one was present.
func (r *Room) RemoveMemberByConn(id ConnID) (*Member, bool) {
	for i, m := range r.Members {
		if m.Conn == id {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return m, true
		}
	}
	return nil, false
}

func (r *Room) AppendMessage(msg Message) {
	r.Messages = append(r.Messages, msg)
}

// Clone deep-copies the room so snapshots can leave the coordinator
// goroutine safely.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Members = make([]*Member, len(r.Members))
	for i, m := range r.Members {
		mc := *m
		cp.Members[i] = &mc
	}
	cp.Messages = append([]Message(nil), r.Messages...)
	cp.Documents = make([]*Document, len(r.Documents))
	for i, d := range r.Documents {
		dc := *d
		cp.Documents[i] = &dc
	}
	cp.Polls = append([]PollID(nil), r.Polls...)
	return &cp
}
