// Package domain holds the plain data model of the coordination engine:
// rooms, members, polls, documents and the error taxonomy. No transport,
// no goroutines.
package domain

import "errors"

// Coordination failures surfaced to the acting participant. Adapters map
// them to wire codes with ErrorCode; they are never fatal to a connection.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomNotActive  = errors.New("room not active")
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollNotActive  = errors.New("poll not active")
	ErrAlreadyVoted   = errors.New("already voted")
	ErrInvalidOption  = errors.New("invalid option")
	ErrInvalidPayload = errors.New("invalid payload")

	ErrNotHost   = errors.New("not the room host")
	ErrNotMember = errors.New("not a room member")
)

// ErrorCode renders a taxonomy error as its stable wire code. The
// authorization sentinels carry codes too so a refused action is
// debuggable from the client side. Errors outside the taxonomy
// (internal failures) yield "" and are not surfaced on the socket.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrRoomNotActive):
		return "ROOM_NOT_ACTIVE"
	case errors.Is(err, ErrPollNotFound):
		return "POLL_NOT_FOUND"
	case errors.Is(err, ErrPollNotActive):
		return "POLL_NOT_ACTIVE"
	case errors.Is(err, ErrAlreadyVoted):
		return "ALREADY_VOTED"
	case errors.Is(err, ErrInvalidOption):
		return "INVALID_OPTION"
	case errors.Is(err, ErrInvalidPayload):
		return "INVALID_PAYLOAD"
	case errors.Is(err, ErrNotHost):
		return "NOT_HOST"
	case errors.Is(err, ErrNotMember):
		return "NOT_MEMBER"
	default:
		return ""
	}
}
