package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	PollID     string
	PollStatus string
)

const (
	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 10
	MaxQuestionLen = 300
	MaxOptionLen   = 120
)

var (
	ErrQuestionEmpty   = fmt.Errorf("poll question empty: %w", ErrInvalidPayload)
	ErrQuestionTooLong = fmt.Errorf("poll question too long: %w", ErrInvalidPayload)
	ErrBadOptionCount  = fmt.Errorf("poll needs 2..10 options: %w", ErrInvalidPayload)
	ErrOptionEmpty     = fmt.Errorf("poll option empty: %w", ErrInvalidPayload)
	ErrOptionTooLong   = fmt.Errorf("poll option too long: %w", ErrInvalidPayload)
)

// PollOption is one choice of a poll. Voters is the set of subjects that
// picked this option; it never leaves the process.
type PollOption struct {
	Index  int                    `json:"index"`
	Text   string                 `json:"text"`
	Votes  int                    `json:"votes"`
	Voters map[SubjectID]struct{} `json:"-"`
}

// Poll closes exactly once, by expiry or by an explicit end, and never
// reopens. Vote counts conserve: sum of option votes == Total.
type Poll struct {
	ID       PollID       `json:"id"`
	Room     RoomID       `json:"roomId"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	Status   PollStatus   `json:"status"`
	Total    int          `json:"total"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewPoll validates the question and options and returns an active poll
// expiring after d.
func NewPoll(room RoomID, question string, options []string, d time.Duration, now time.Time) (*Poll, error) {
	if question == "" {
		return nil, ErrQuestionEmpty
	}
	if len(question) > MaxQuestionLen {
		return nil, ErrQuestionTooLong
	}
	if len(options) < MinPollOptions || len(options) > MaxPollOptions {
		return nil, ErrBadOptionCount
	}
	p := &Poll{
		ID:        PollID(uuid.NewString()),
		Room:      room,
		Question:  question,
		Options:   make([]PollOption, len(options)),
		Status:    PollActive,
		CreatedAt: now,
		ExpiresAt: now.Add(d),
	}
	for i, text := range options {
		if text == "" {
			return nil, ErrOptionEmpty
		}
		if len(text) > MaxOptionLen {
			return nil, ErrOptionTooLong
		}
		p.Options[i] = PollOption{Index: i, Text: text, Voters: make(map[SubjectID]struct{})}
	}
	return p, nil
}

// Vote records one choice for subject. A subject votes at most once per
// poll across all options.
func (p *Poll) Vote(subject SubjectID, option int) error {
	if p.Status != PollActive {
		return ErrPollNotActive
	}
	if option < 0 || option >= len(p.Options) {
		return ErrInvalidOption
	}
	if p.HasVoted(subject) {
		return ErrAlreadyVoted
	}
	p.Options[option].Votes++
	p.Options[option].Voters[subject] = struct{}{}
	p.Total++
	return nil
}

func (p *Poll) HasVoted(subject SubjectID) bool {
	for i := range p.Options {
		if _, ok := p.Options[i].Voters[subject]; ok {
			return true
		}
	}
	return false
}

// Close transitions to closed and reports whether this call did it.
func (p *Poll) Close() bool {
	if p.Status == PollClosed {
		return false
	}
	p.Status = PollClosed
	return true
}

// Counts is the running tally in option order.
func (p *Poll) Counts() []int {
	out := make([]int, len(p.Options))
	for i := range p.Options {
		out[i] = p.Options[i].Votes
	}
	return out
}

// Clone deep-copies the poll (voter sets included) so snapshots can
// leave the coordinator goroutine safely.
func (p *Poll) Clone() *Poll {
	cp := *p
	cp.Options = make([]PollOption, len(p.Options))
	for i, o := range p.Options {
		oc := o
		oc.Voters = make(map[SubjectID]struct{}, len(o.Voters))
		for s := range o.Voters {
			oc.Voters[s] = struct{}{}
		}
		cp.Options[i] = oc
	}
	return &cp
}
