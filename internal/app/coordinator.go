// Package app is the coordination engine. One goroutine owns every
// registry; adapters talk to it through typed commands on a single
// queue and get answers over per-command reply channels.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultQueueSize = 512

// ErrStopped is returned to callers still waiting on a reply when the
// coordinator loop shuts down underneath them.
var ErrStopped = errors.New("coordinator stopped")

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	PollDuration time.Duration
	QueueSize    int
}

// Coordinator serializes all room, membership, poll and relay state
// behind one command loop. None of its maps are guarded by locks; only
// the loop goroutine touches them.
type Coordinator struct {
	cmds chan command
	done chan struct{}

	conns      map[domain.ConnID]*connEntry
	rooms      map[domain.RoomID]*domain.Room
	polls      map[domain.PollID]*domain.Poll
	pollTimers map[domain.PollID]*time.Timer
	requests   map[domain.RoomID]map[domain.ConnID]*domain.JoinRequest

	pollDuration time.Duration
	now          func() time.Time
}

func New(opts Options) *Coordinator {
	if opts.PollDuration <= 0 {
		opts.PollDuration = 60 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Coordinator{
		cmds:         make(chan command, opts.QueueSize),
		done:         make(chan struct{}),
		conns:        make(map[domain.ConnID]*connEntry),
		rooms:        make(map[domain.RoomID]*domain.Room),
		polls:        make(map[domain.PollID]*domain.Poll),
		pollTimers:   make(map[domain.PollID]*time.Timer),
		requests:     make(map[domain.RoomID]map[domain.ConnID]*domain.JoinRequest),
		pollDuration: opts.PollDuration,
		now:          time.Now,
	}
}

// Run consumes commands until ctx is cancelled. It must be started
// before any adapter submits work.
func (c *Coordinator) Run(ctx context.Context) {
	log.Info().Str("module", "app.coordinator").Msg("coordinator loop started")
	for {
		select {
		case <-ctx.Done():
			c.stopAllTimers()
			close(c.done)
			log.Info().Str("module", "app.coordinator").Msg("coordinator loop stopped")
			return
		case cmd := <-c.cmds:
			c.handle(cmd)
		}
	}
}

// handle dispatches one command. Exported operations funnel here; tests
// may call it directly to drive the engine single-threaded.
func (c *Coordinator) handle(cmd command) {
	switch m := cmd.(type) {
	case cmdConnect:
		c.handleConnect(m)
	case cmdDisconnect:
		c.handleDisconnect(m)
	case cmdCreateRoom:
		m.Reply <- c.handleCreateRoom(m)
	case cmdStartSession:
		m.Reply <- c.handleStartSession(m)
	case cmdJoinRoom:
		m.Reply <- c.handleJoinRoom(m)
	case cmdApproveJoin:
		m.Reply <- c.handleApproveJoin(m)
	case cmdRejectJoin:
		m.Reply <- c.handleRejectJoin(m)
	case cmdConfirmJoin:
		m.Reply <- c.handleConfirmJoin(m)
	case cmdLeaveRoom:
		m.Reply <- c.handleLeaveRoom(m)
	case cmdCreatePoll:
		m.Reply <- c.handleCreatePoll(m)
	case cmdVote:
		m.Reply <- c.handleVote(m)
	case cmdEndPoll:
		m.Reply <- c.handleEndPoll(m)
	case cmdPollExpired:
		c.handlePollExpired(m)
	case cmdSendMessage:
		m.Reply <- c.handleSendMessage(m)
	case cmdRaiseHand:
		m.Reply <- c.handleRaiseHand(m)
	case cmdToggleMedia:
		m.Reply <- c.handleToggleMedia(m)
	case cmdRelay:
		c.handleRelay(m)
	case cmdEndSession:
		m.Reply <- c.handleEndSession(m)
	case cmdAddDocument:
		m.Reply <- c.handleAddDocument(m)
	case cmdGetRoom:
		m.Reply <- c.handleGetRoom(m)
	case cmdListRooms:
		m.Reply <- c.handleListRooms(m)
	}
}

// submit blocks until the loop accepts the command or the caller's
// context dies. A dead context wins over a free buffer slot so work is
// never queued for a stopped loop.
func (c *Coordinator) submit(ctx context.Context, cmd command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case c.cmds <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueueFromTimer feeds timer callbacks back into the loop. A fire
// after the loop has stopped is dropped.
func (c *Coordinator) enqueueFromTimer(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.done:
	}
}

// await collects the loop's reply. The wait ends when the caller's
// context dies or the loop itself stops; a reply that raced in just
// before the stop still counts.
func await[T any](ctx context.Context, done <-chan struct{}, ch <-chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-done:
		select {
		case v := <-ch:
			return v, nil
		default:
		}
		return zero, ErrStopped
	}
}

func (c *Coordinator) stopAllTimers() {
	for id, t := range c.pollTimers {
		t.Stop()
		delete(c.pollTimers, id)
	}
}

// Connect registers a socket with the engine and greets it.
func (c *Coordinator) Connect(ctx context.Context, id domain.ConnID, subject domain.SubjectID, name string, s core.Sender) error {
	return c.submit(ctx, cmdConnect{ID: id, Subject: subject, Name: name, Sender: s})
}

// Disconnect runs the reconciler for a dead socket. Called from the read
// pump's defer; during shutdown the whole state dies with the loop, so a
// dropped enqueue is fine.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	c.enqueueFromTimer(cmdDisconnect{ID: id})
}

func (c *Coordinator) CreateRoom(ctx context.Context, actor Actor, kind domain.RoomKind, title, desc string, host domain.Profile, settings *domain.Settings) (*domain.Room, error) {
	ch := make(chan roomReply, 1)
	if err := c.submit(ctx, cmdCreateRoom{Actor: actor, Kind: kind, Title: title, Desc: desc, Host: host, Settings: settings, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Room, r.Err
}

func (c *Coordinator) StartSession(ctx context.Context, actor Actor, room domain.RoomID) (*domain.Room, error) {
	ch := make(chan roomReply, 1)
	if err := c.submit(ctx, cmdStartSession{Actor: actor, Room: room, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Room, r.Err
}

func (c *Coordinator) JoinRoom(ctx context.Context, actor Actor, room domain.RoomID, p domain.Profile) (*domain.Room, error) {
	ch := make(chan roomReply, 1)
	if err := c.submit(ctx, cmdJoinRoom{Actor: actor, Room: room, Profile: p, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Room, r.Err
}

func (c *Coordinator) ApproveJoin(ctx context.Context, actor Actor, room domain.RoomID, requester domain.ConnID) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdApproveJoin{Actor: actor, Room: room, Requester: requester, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) RejectJoin(ctx context.Context, actor Actor, room domain.RoomID, requester domain.ConnID, reason string) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdRejectJoin{Actor: actor, Room: room, Requester: requester, Reason: reason, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) ConfirmJoin(ctx context.Context, actor Actor, room domain.RoomID, p domain.Profile) (*domain.Room, error) {
	ch := make(chan roomReply, 1)
	if err := c.submit(ctx, cmdConfirmJoin{Actor: actor, Room: room, Profile: p, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Room, r.Err
}

func (c *Coordinator) LeaveRoom(ctx context.Context, actor Actor, room domain.RoomID) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdLeaveRoom{Actor: actor, Room: room, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) CreatePoll(ctx context.Context, actor Actor, room domain.RoomID, question string, options []string, d time.Duration) (*domain.Poll, error) {
	ch := make(chan pollReply, 1)
	if err := c.submit(ctx, cmdCreatePoll{Actor: actor, Room: room, Question: question, Options: options, Duration: d, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Poll, r.Err
}

func (c *Coordinator) Vote(ctx context.Context, actor Actor, poll domain.PollID, option int) (*domain.Poll, error) {
	ch := make(chan pollReply, 1)
	if err := c.submit(ctx, cmdVote{Actor: actor, Poll: poll, Option: option, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Poll, r.Err
}

func (c *Coordinator) EndPoll(ctx context.Context, actor Actor, poll domain.PollID) (*domain.Poll, error) {
	ch := make(chan pollReply, 1)
	if err := c.submit(ctx, cmdEndPoll{Actor: actor, Poll: poll, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Poll, r.Err
}

func (c *Coordinator) SendMessage(ctx context.Context, actor Actor, room domain.RoomID, text string) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdSendMessage{Actor: actor, Room: room, Text: text, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) RaiseHand(ctx context.Context, actor Actor, room domain.RoomID, raised bool) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdRaiseHand{Actor: actor, Room: room, Raised: raised, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) ToggleMedia(ctx context.Context, actor Actor, room domain.RoomID, field MediaField, enabled bool) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdToggleMedia{Actor: actor, Room: room, Field: field, Enabled: enabled, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

// Relay forwards a signaling payload. Fire and forget by contract.
func (c *Coordinator) Relay(ctx context.Context, actor Actor, event string, target domain.ConnID, payload json.RawMessage) error {
	return c.submit(ctx, cmdRelay{Actor: actor, Event: event, Target: target, Payload: payload})
}

func (c *Coordinator) EndSession(ctx context.Context, actor Actor, room domain.RoomID) error {
	ch := make(chan error, 1)
	if err := c.submit(ctx, cmdEndSession{Actor: actor, Room: room, Reply: ch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, ch)
}

func (c *Coordinator) AddDocument(ctx context.Context, actor Actor, room domain.RoomID, name, url string, size int64) (*domain.Document, error) {
	ch := make(chan docReply, 1)
	if err := c.submit(ctx, cmdAddDocument{Actor: actor, Room: room, Name: name, URL: url, Size: size, Reply: ch}); err != nil {
		return nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, err
	}
	return r.Doc, r.Err
}

// GetRoom returns a detached snapshot of a room and its polls.
func (c *Coordinator) GetRoom(ctx context.Context, room domain.RoomID) (*domain.Room, []*domain.Poll, error) {
	ch := make(chan snapshotReply, 1)
	if err := c.submit(ctx, cmdGetRoom{Room: room, Reply: ch}); err != nil {
		return nil, nil, err
	}
	r, err := await(ctx, c.done, ch)
	if err != nil {
		return nil, nil, err
	}
	return r.Room, r.Polls, r.Err
}

// ListRooms lists rooms, optionally filtered by kind ("" for all).
func (c *Coordinator) ListRooms(ctx context.Context, kind domain.RoomKind) ([]RoomInfo, error) {
	ch := make(chan []RoomInfo, 1)
	if err := c.submit(ctx, cmdListRooms{Kind: kind, Reply: ch}); err != nil {
		return nil, err
	}
	return await(ctx, c.done, ch)
}

// awaitErr is await for the commands whose whole reply is an error.
// The wait's own failure wins over never hearing the loop's answer.
func (c *Coordinator) awaitErr(ctx context.Context, ch <-chan error) error {
	rep, err := await(ctx, c.done, ch)
	if err != nil {
		return err
	}
	return rep
}
