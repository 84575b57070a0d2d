package app

import (
	"time"

	"github.com/Parth0603/backendServer/internal/domain"
	"github.com/rs/zerolog/log"
)

func (c *Coordinator) handleCreatePoll(m cmdCreatePoll) pollReply {
	r, ok := c.rooms[m.Room]
	if !ok {
		return pollReply{Err: domain.ErrRoomNotFound}
	}
	if c.subjectOf(m.Actor) != r.HostSubject {
		return pollReply{Err: domain.ErrNotHost}
	}
	d := m.Duration
	if d <= 0 {
		d = c.pollDuration
	}
	p, err := domain.NewPoll(r.ID, m.Question, m.Options, d, c.now())
	if err != nil {
		return pollReply{Err: err}
	}
	c.polls[p.ID] = p
	r.Polls = append(r.Polls, p.ID)
	c.armPollTimer(p)
	log.Info().Str("module", "app.polls").Str("room", string(r.ID)).Str("poll", string(p.ID)).Dur("duration", d).Msg("poll started")
	c.fanout(r, EvPollStarted, PollPayload{Poll: p}, "")
	return pollReply{Poll: p.Clone()}
}

func (c *Coordinator) handleVote(m cmdVote) pollReply {
	p, ok := c.polls[m.Poll]
	if !ok {
		return pollReply{Err: domain.ErrPollNotFound}
	}
	subject := c.subjectOf(m.Actor)
	if subject == "" {
		return pollReply{Err: domain.ErrInvalidPayload}
	}
	if err := p.Vote(subject, m.Option); err != nil {
		return pollReply{Err: err}
	}
	r, ok := c.rooms[p.Room]
	if ok && r.Kind == domain.KindEvent {
		// Tally delta to the room; the voter already knows its own vote.
		c.fanout(r, EvPollVote, PollVoteDelta{PollID: p.ID, Counts: p.Counts(), Total: p.Total}, m.Actor.Conn)
	} else if m.Actor.Conn != "" {
		c.notify(m.Actor.Conn, EvPollVote, PollPayload{Poll: p})
	}
	return pollReply{Poll: p.Clone()}
}

func (c *Coordinator) handleEndPoll(m cmdEndPoll) pollReply {
	p, ok := c.polls[m.Poll]
	if !ok {
		return pollReply{Err: domain.ErrPollNotFound}
	}
	r := c.rooms[p.Room]
	if r != nil && c.subjectOf(m.Actor) != r.HostSubject {
		return pollReply{Err: domain.ErrNotHost}
	}
	if !p.Close() {
		return pollReply{Err: domain.ErrPollNotActive}
	}
	c.finishPoll(p, r)
	log.Info().Str("module", "app.polls").Str("poll", string(p.ID)).Msg("poll ended by host")
	return pollReply{Poll: p.Clone()}
}

// handlePollExpired is the scheduled close. Stale fires against deleted
// or already-closed polls are silent no-ops.
func (c *Coordinator) handlePollExpired(m cmdPollExpired) {
	p, ok := c.polls[m.Poll]
	if !ok {
		log.Debug().Str("module", "app.polls").Str("poll", string(m.Poll)).Msg("expiry for deleted poll")
		return
	}
	if !p.Close() {
		return
	}
	c.finishPoll(p, c.rooms[p.Room])
	log.Info().Str("module", "app.polls").Str("poll", string(p.ID)).Msg("poll expired")
}

// finishPoll clears the timer and announces the final tally.
func (c *Coordinator) finishPoll(p *domain.Poll, r *domain.Room) {
	if t, ok := c.pollTimers[p.ID]; ok {
		t.Stop()
		delete(c.pollTimers, p.ID)
	}
	if r != nil {
		c.fanout(r, EvPollEnded, PollPayload{Poll: p}, "")
	}
}

// armPollTimer schedules the expiry command. The callback only enqueues;
// the transition itself runs on the loop.
func (c *Coordinator) armPollTimer(p *domain.Poll) {
	d := p.ExpiresAt.Sub(c.now())
	if d < 0 {
		d = 0
	}
	id := p.ID
	c.pollTimers[id] = time.AfterFunc(d, func() {
		c.enqueueFromTimer(cmdPollExpired{Poll: id})
	})
}

// dropPoll removes a poll and its timer without notifications. Used by
// room teardown.
func (c *Coordinator) dropPoll(id domain.PollID) {
	if t, ok := c.pollTimers[id]; ok {
		t.Stop()
		delete(c.pollTimers, id)
	}
	delete(c.polls, id)
}
