package app

import (
	"encoding/json"

	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

// Outbound event names. One constant per socket event the engine emits;
// adapters never invent names of their own.
const (
	EvWelcome          = "welcome"
	EvRoomCreated      = "room-created"
	EvSessionStarted   = "session-started"
	EvRoomJoined       = "room-joined"
	EvRoomNotFound     = "room-not-found"
	EvJoinPending      = "join-pending"
	EvJoinRequested    = "join-requested"
	EvJoinApproved     = "join-approved"
	EvJoinRejected     = "join-rejected"
	EvAttendeeJoined   = "attendee-joined"
	EvStudentJoined    = "student-joined"
	EvUserConnected    = "user-connected"
	EvAttendeeLeft     = "attendee-left"
	EvStudentLeft      = "student-left"
	EvUserDisconnected = "user-disconnected"
	EvNewMessage       = "new-message"
	EvPollStarted      = "poll-started"
	EvPollVote         = "poll-vote"
	EvPollEnded        = "poll-ended"
	EvHandRaised       = "hand-raised"
	EvMediaState       = "media-state"
	EvDocumentShared   = "document-shared"
	EvHostDisconnected = "host-disconnected"
	EvSessionEnded     = "session-ended"
	EvSignalOffer      = "signal-offer"
	EvSignalAnswer     = "signal-answer"
	EvSignalICE        = "signal-ice"
	EvError            = "error"
	EvPong             = "pong"
)

type WelcomePayload struct {
	ConnectionID domain.ConnID    `json:"connectionId"`
	SubjectID    domain.SubjectID `json:"subjectId"`
	Name         string           `json:"name"`
}

// RoomSnapshot is the ack payload for creates, joins and session starts.
type RoomSnapshot struct {
	Room    *domain.Room   `json:"room"`
	HostID  domain.ConnID  `json:"hostConnectionId,omitempty"`
	Polls   []*domain.Poll `json:"activePolls,omitempty"`
	SelfID  domain.ConnID  `json:"connectionId,omitempty"`
	Message string         `json:"message,omitempty"`
}

type RoomRefPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Reason string        `json:"reason,omitempty"`
}

type MemberPayload struct {
	RoomID domain.RoomID  `json:"roomId"`
	Member *domain.Member `json:"member"`
}

type MemberLeftPayload struct {
	RoomID       domain.RoomID `json:"roomId"`
	ConnectionID domain.ConnID `json:"connectionId"`
	Name         string        `json:"name"`
}

type JoinRequestedPayload struct {
	Request *domain.JoinRequest `json:"request"`
}

type JoinApprovedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	HostID domain.ConnID `json:"hostConnectionId"`
}

type MessagePayload struct {
	RoomID  domain.RoomID  `json:"roomId"`
	Message domain.Message `json:"message"`
}

type PollPayload struct {
	Poll *domain.Poll `json:"poll"`
}

// PollVoteDelta is the event-room tally broadcast. Voter identity is not
// part of it.
type PollVoteDelta struct {
	PollID domain.PollID `json:"pollId"`
	Counts []int         `json:"counts"`
	Total  int           `json:"total"`
}

type HandPayload struct {
	RoomID       domain.RoomID `json:"roomId"`
	ConnectionID domain.ConnID `json:"connectionId"`
	Name         string        `json:"name"`
	Raised       bool          `json:"raised"`
}

type MediaStatePayload struct {
	RoomID       domain.RoomID `json:"roomId"`
	ConnectionID domain.ConnID `json:"connectionId"`
	Audio        bool          `json:"audio"`
	Video        bool          `json:"video"`
	Screenshare  bool          `json:"screenshare"`
}

type DocumentPayload struct {
	Document *domain.Document `json:"document"`
}

type SignalPayload struct {
	From    domain.ConnID   `json:"fromConnectionId"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notify marshals once and delivers to a single connection. Best-effort:
// a missing or saturated receiver is logged, never an error to the caller.
func (c *Coordinator) notify(id domain.ConnID, event string, data any) {
	e, ok := c.conns[id]
	if !ok {
		log.Debug().Str("module", "app.notify").Str("conn", string(id)).Str("event", event).Msg("receiver gone")
		return
	}
	f, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.notify").Str("event", event).Msg("encode failed")
		return
	}
	if err := e.sender.TrySend(f); err != nil {
		log.Warn().Str("module", "app.notify").Str("conn", string(id)).Str("event", event).Msg("dropped frame")
	}
}
