package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nvoss/codeshare/internal/app"
	"github.com/nvoss/codeshare/internal/config"
	"github.com/nvoss/codeshare/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Controller binds the relay to gorilla/websocket connections. One
// instance serves every connection.
type Controller struct {
	Relay   *app.Relay
	Limiter *app.JoinLimiter
	cfg     *config.Config
}

func NewController(cfg *config.Config, relay *app.Relay) *Controller {
	return &Controller{
		Relay:   relay,
		Limiter: app.NewJoinLimiter(cfg.JoinLimit, cfg.JoinInterval),
		cfg:     cfg,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn is the transport endpoint handed to the relay. Sends enqueue
// onto a buffered channel drained by the write pump; a full buffer is
// a dropped frame, never a blocked room lock.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
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

// HandleWS upgrades the request and runs the connection lifecycle.
// The connection id is a fresh uuid per upgrade: two tabs of the same
// browser are two participants.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}

	id := core.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Relay.Connect(id, conn, cancel)
	log.Info().Str("module", "ws").Str("conn", string(id)).
		Str("sid", c.GetString("client_token")).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, id, conn)
}
