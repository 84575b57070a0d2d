package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/domain"
)

func (ctl *Controller) handleCreatePoll(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID          domain.RoomID `json:"roomId"`
		Question        string        `json:"question"`
		Options         []string      `json:"options"`
		DurationSeconds int           `json:"durationSeconds,omitempty"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	d := time.Duration(p.DurationSeconds) * time.Second
	if _, err := ctl.Engine.CreatePoll(ctx, actor, p.RoomID, p.Question, p.Options, d); err != nil {
		ctl.sendError(c, err)
	}
}

// handleVotePoll trusts the connection's verified subject, never the
// payload, for voter identity.
func (ctl *Controller) handleVotePoll(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		PollID domain.PollID `json:"pollId"`
		Option int           `json:"optionId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.PollID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if _, err := ctl.Engine.Vote(ctx, actor, p.PollID, p.Option); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleEndPoll(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		PollID domain.PollID `json:"pollId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.PollID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if _, err := ctl.Engine.EndPoll(ctx, actor, p.PollID); err != nil {
		ctl.sendError(c, err)
	}
}
