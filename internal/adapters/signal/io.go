package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/auth"
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, ident auth.Identity, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		cancel()
		ctl.Engine.Disconnect(c.id)
		ctl.limiter.Forget(c.id)
		c.Close()
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	if ctl.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	actor := app.Actor{Conn: c.id, Subject: ident.Subject, Name: ident.Name}
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				}
				return
			}
			if !ctl.limiter.Allow(c.id) {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("rate limited, frame dropped")
				continue
			}
			ctl.dispatch(ctx, actor, c, data)
		}
	}
}

// dispatch maps one wire envelope onto an engine command. Unknown events
// are ignored; malformed ones earn the sender an INVALID_PAYLOAD.
func (ctl *Controller) dispatch(ctx context.Context, actor app.Actor, c *WsConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("bad envelope")
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}

	switch env.Event {
	case "create-room":
		ctl.handleCreateRoom(ctx, actor, c, env.Data)
	case "start-session":
		ctl.handleStartSession(ctx, actor, c, env.Data)
	case "join-room", "join-request":
		ctl.handleJoinRoom(ctx, actor, c, env.Data)
	case "approve-join":
		ctl.handleApproveJoin(ctx, actor, c, env.Data)
	case "reject-join":
		ctl.handleRejectJoin(ctx, actor, c, env.Data)
	case "confirm-join":
		ctl.handleConfirmJoin(ctx, actor, c, env.Data)
	case "leave-room":
		ctl.handleLeaveRoom(ctx, actor, c, env.Data)
	case "end-session", "event-end":
		ctl.handleEndSession(ctx, actor, c, env.Data)
	case "create-poll":
		ctl.handleCreatePoll(ctx, actor, c, env.Data)
	case "vote-poll":
		ctl.handleVotePoll(ctx, actor, c, env.Data)
	case "end-poll":
		ctl.handleEndPoll(ctx, actor, c, env.Data)
	case "send-message":
		ctl.handleSendMessage(ctx, actor, c, env.Data)
	case "raise-hand":
		ctl.handleHand(ctx, actor, c, env.Data, true)
	case "lower-hand":
		ctl.handleHand(ctx, actor, c, env.Data, false)
	case "toggle-audio":
		ctl.handleToggleMedia(ctx, actor, c, env.Data, app.MediaAudio)
	case "toggle-video":
		ctl.handleToggleMedia(ctx, actor, c, env.Data, app.MediaVideo)
	case "toggle-screenshare":
		ctl.handleToggleMedia(ctx, actor, c, env.Data, app.MediaScreenshare)
	case "signal-offer", "signal-answer", "signal-ice":
		ctl.handleSignal(ctx, actor, c, env.Event, env.Data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *Controller) sendEvent(c *WsConn, event string, data any) {
	f, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("encode failed")
		return
	}
	_ = c.TrySend(f)
}

// sendError renders a taxonomy failure, authorization refusals
// included, to the acting socket only. Errors outside the wire
// taxonomy stay server-side.
func (ctl *Controller) sendError(c *WsConn, err error) {
	code := domain.ErrorCode(err)
	if code == "" {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("suppressed error")
		return
	}
	ctl.sendEvent(c, app.EvError, app.ErrorPayload{Code: code, Message: err.Error()})
}

// replyJoinError keeps the dedicated room-not-found event for join flows.
func (ctl *Controller) replyJoinError(c *WsConn, room domain.RoomID, err error) {
	if errors.Is(err, domain.ErrRoomNotFound) {
		ctl.sendEvent(c, app.EvRoomNotFound, app.RoomRefPayload{RoomID: room})
		return
	}
	ctl.sendError(c, err)
}
