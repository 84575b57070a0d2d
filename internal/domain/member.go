package domain

import (
	"fmt"
	"time"
)

type (
	// ConnID identifies one live socket. A participant gets a new one on
	// every reconnect.
	ConnID string
	// SubjectID is the verified identity behind a connection and is stable
	// across reconnects.
	SubjectID string
)

const MaxNameLen = 64

var (
	ErrNameEmpty   = fmt.Errorf("display name empty: %w", ErrInvalidPayload)
	ErrNameTooLong = fmt.Errorf("display name too long: %w", ErrInvalidPayload)
)

// Profile is the display identity a participant presents when joining.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return ErrNameEmpty
	}
	if len(p.Name) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}

// Member represents one participant's presence in a room.
// No transport or lifecycle logic here.
type Member struct {
	Conn    ConnID    `json:"connectionId"`
	Subject SubjectID `json:"subjectId"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`

	HandRaised  bool `json:"handRaised"`
	Audio       bool `json:"audio"`
	Video       bool `json:"video"`
	Screenshare bool `json:"screenshare"`

	JoinedAt time.Time `json:"joinedAt"`
}

// NewMember avoids raw literals in the engine and keeps construction obvious.
func NewMember(conn ConnID, subject SubjectID, p Profile, now time.Time) *Member {
	return &Member{Conn: conn, Subject: subject, Name: p.Name, Email: p.Email, JoinedAt: now}
}
