package app

import (
	"encoding/json"
	"time"

	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
)

// Actor identifies who issued a command. Socket commands carry the
// connection id; REST commands carry only the verified subject.
type Actor struct {
	Conn    domain.ConnID
	Subject domain.SubjectID
	Name    string
}

// command is the closed set of operations the coordinator loop executes.
// Adapters translate wire events and HTTP calls into these; nothing else
// touches engine state.
type command interface{ isCommand() }

type roomReply struct {
	Room *domain.Room
	Err  error
}

type pollReply struct {
	Poll *domain.Poll
	Err  error
}

type docReply struct {
	Doc *domain.Document
	Err error
}

type snapshotReply struct {
	Room  *domain.Room
	Polls []*domain.Poll
	Err   error
}

type cmdConnect struct {
	ID      domain.ConnID
	Subject domain.SubjectID
	Name    string
	Sender  core.Sender
}

type cmdDisconnect struct {
	ID domain.ConnID
}

type cmdCreateRoom struct {
	Actor    Actor
	Kind     domain.RoomKind
	Title    string
	Desc     string
	Host     domain.Profile
	Settings *domain.Settings
	Reply    chan<- roomReply
}

type cmdStartSession struct {
	Actor Actor
	Room  domain.RoomID
	Reply chan<- roomReply
}

type cmdJoinRoom struct {
	Actor   Actor
	Room    domain.RoomID
	Profile domain.Profile
	Reply   chan<- roomReply
}

type cmdApproveJoin struct {
	Actor     Actor
	Room      domain.RoomID
	Requester domain.ConnID
	Reply     chan<- error
}

type cmdRejectJoin struct {
	Actor     Actor
	Room      domain.RoomID
	Requester domain.ConnID
	Reason    string
	Reply     chan<- error
}

type cmdConfirmJoin struct {
	Actor   Actor
	Room    domain.RoomID
	Profile domain.Profile
	Reply   chan<- roomReply
}

type cmdLeaveRoom struct {
	Actor Actor
	Room  domain.RoomID
	Reply chan<- error
}

type cmdCreatePoll struct {
	Actor    Actor
	Room     domain.RoomID
	Question string
	Options  []string
	Duration time.Duration
	Reply    chan<- pollReply
}

type cmdVote struct {
	Actor  Actor
	Poll   domain.PollID
	Option int
	Reply  chan<- pollReply
}

type cmdEndPoll struct {
	Actor Actor
	Poll  domain.PollID
	Reply chan<- pollReply
}

// cmdPollExpired is enqueued by the expiry timer. It re-checks poll
// existence and status; a stale fire is a no-op.
type cmdPollExpired struct {
	Poll domain.PollID
}

type cmdSendMessage struct {
	Actor Actor
	Room  domain.RoomID
	Text  string
	Reply chan<- error
}

type cmdRaiseHand struct {
	Actor  Actor
	Room   domain.RoomID
	Raised bool
	Reply  chan<- error
}

// MediaField selects which member media flag a toggle updates.
type MediaField int

const (
	MediaAudio MediaField = iota
	MediaVideo
	MediaScreenshare
)

type cmdToggleMedia struct {
	Actor   Actor
	Room    domain.RoomID
	Field   MediaField
	Enabled bool
	Reply   chan<- error
}

type cmdRelay struct {
	Actor   Actor
	Event   string
	Target  domain.ConnID
	Payload json.RawMessage
}

type cmdEndSession struct {
	Actor Actor
	Room  domain.RoomID
	Reply chan<- error
}

type cmdAddDocument struct {
	Actor Actor
	Room  domain.RoomID
	Name  string
	URL   string
	Size  int64
	Reply chan<- docReply
}

type cmdGetRoom struct {
	Room  domain.RoomID
	Reply chan<- snapshotReply
}

type cmdListRooms struct {
	Kind  domain.RoomKind
	Reply chan<- []RoomInfo
}

func (cmdConnect) isCommand()      {}
func (cmdDisconnect) isCommand()   {}
func (cmdCreateRoom) isCommand()   {}
func (cmdStartSession) isCommand() {}
func (cmdJoinRoom) isCommand()     {}
func (cmdApproveJoin) isCommand()  {}
func (cmdRejectJoin) isCommand()   {}
func (cmdConfirmJoin) isCommand()  {}
func (cmdLeaveRoom) isCommand()    {}
func (cmdCreatePoll) isCommand()   {}
func (cmdVote) isCommand()         {}
func (cmdEndPoll) isCommand()      {}
func (cmdPollExpired) isCommand()  {}
func (cmdSendMessage) isCommand()  {}
func (cmdRaiseHand) isCommand()    {}
func (cmdToggleMedia) isCommand()  {}
func (cmdRelay) isCommand()        {}
func (cmdEndSession) isCommand()   {}
func (cmdAddDocument) isCommand()  {}
func (cmdGetRoom) isCommand()      {}
func (cmdListRooms) isCommand()    {}
