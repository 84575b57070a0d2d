// Package signal is the WebSocket adapter: it upgrades connections,
// pumps frames, decodes wire envelopes and turns them into engine
// commands. No coordination state lives here.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/auth"
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Config is the transport tuning the controller needs.
type Config struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
	MsgRate    int
	MsgWindow  time.Duration
}

type Controller struct {
	Engine *app.Coordinator

	cfg     Config
	limiter *MessageRateLimiter
}

func NewController(engine *app.Coordinator, cfg Config) *Controller {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 30 * time.Second
	}
	if cfg.MsgRate <= 0 {
		cfg.MsgRate = 50
	}
	if cfg.MsgWindow <= 0 {
		cfg.MsgWindow = time.Second
	}
	return &Controller{
		Engine:  engine,
		cfg:     cfg,
		limiter: NewMessageRateLimiter(cfg.MsgRate, cfg.MsgWindow),
	}
}

// WsConn is the engine-facing half of one socket. TrySend never blocks;
// the write pump drains the buffer.
type WsConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades one request and hands the connection to the engine.
// ctx is the process context; the pumps die with it or with the socket.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ident := auth.FromContext(c)
	id := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("subject", string(ident.Subject)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.Engine.Connect(ctx, id, ident.Subject, ident.Name, conn); err != nil {
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, ident, conn)
}
