package domain

import "time"

// JoinRequest is a transient teaching-room join awaiting host approval.
// It lives in the engine, not on the room, and dies with the requester's
// connection.
type JoinRequest struct {
	Conn    ConnID    `json:"connectionId"`
	Subject SubjectID `json:"subjectId"`
	Room    RoomID    `json:"roomId"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
