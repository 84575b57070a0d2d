package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/domain"
)

// Room lifecycle and membership events. Success traffic (acks, fan-out)
// comes from the engine; these handlers validate the payload, run the
// command and render errors.

func (ctl *Controller) handleCreateRoom(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		Kind        string           `json:"kind"`
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Host        domain.Profile   `json:"host"`
		Settings    *domain.Settings `json:"settings,omitempty"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	kind, err := domain.ParseRoomKind(p.Kind)
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	if p.Host.Name == "" {
		p.Host.Name = actor.Name
	}
	if _, err := ctl.Engine.CreateRoom(ctx, actor, kind, p.Title, p.Description, p.Host, p.Settings); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleStartSession(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if _, err := ctl.Engine.StartSession(ctx, actor, p.RoomID); err != nil {
		ctl.replyJoinError(c, p.RoomID, err)
	}
}

func (ctl *Controller) handleJoinRoom(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID  domain.RoomID  `json:"roomId"`
		Profile domain.Profile `json:"profile"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if p.Profile.Name == "" {
		p.Profile.Name = actor.Name
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", string(p.RoomID)).Msg("join")
	if _, err := ctl.Engine.JoinRoom(ctx, actor, p.RoomID, p.Profile); err != nil {
		ctl.replyJoinError(c, p.RoomID, err)
	}
}

func (ctl *Controller) handleApproveJoin(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID    domain.RoomID `json:"roomId"`
		Requester domain.ConnID `json:"connectionId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.Requester == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.ApproveJoin(ctx, actor, p.RoomID, p.Requester); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleRejectJoin(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID    domain.RoomID `json:"roomId"`
		Requester domain.ConnID `json:"connectionId"`
		Reason    string        `json:"reason,omitempty"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.Requester == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.RejectJoin(ctx, actor, p.RoomID, p.Requester, p.Reason); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleConfirmJoin(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID  domain.RoomID  `json:"roomId"`
		Profile domain.Profile `json:"profile"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if p.Profile.Name == "" {
		p.Profile.Name = actor.Name
	}
	if _, err := ctl.Engine.ConfirmJoin(ctx, actor, p.RoomID, p.Profile); err != nil {
		ctl.replyJoinError(c, p.RoomID, err)
	}
}

// handleLeaveRoom is a voluntary exit; the socket stays up.
func (ctl *Controller) handleLeaveRoom(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", string(p.RoomID)).Msg("leave")
	if err := ctl.Engine.LeaveRoom(ctx, actor, p.RoomID); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleEndSession(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.EndSession(ctx, actor, p.RoomID); err != nil {
		ctl.sendError(c, err)
	}
}
