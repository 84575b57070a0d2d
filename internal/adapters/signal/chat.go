package signal

import (
	"context"
	"encoding/json"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/domain"
)

func (ctl *Controller) handleSendMessage(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	type payload struct {
		RoomID domain.RoomID `json:"roomId"`
		Text   string        `json:"message"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.SendMessage(ctx, actor, p.RoomID, p.Text); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleHand(ctx context.Context, actor app.Actor, c *WsConn, data []byte, raised bool) {
	type payload struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.RaiseHand(ctx, actor, p.RoomID, raised); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleToggleMedia(ctx context.Context, actor app.Actor, c *WsConn, data []byte, field app.MediaField) {
	type payload struct {
		RoomID  domain.RoomID `json:"roomId"`
		Enabled bool          `json:"enabled"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	if err := ctl.Engine.ToggleMedia(ctx, actor, p.RoomID, field, p.Enabled); err != nil {
		ctl.sendError(c, err)
	}
}
