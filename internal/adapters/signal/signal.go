// Package signal is the websocket transport of the relay: one read loop and
// one write loop per connection, with a bounded outbound queue.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/app/orch"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ClientTokenKey is the gin context key holding the browser client token.
const ClientTokenKey = "client_token"

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	opts     Options
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn implements core.SignalConnection over a websocket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(conn *websocket.Conn, size int) *WsSignalConn {
	return &WsSignalConn{
		conn: conn,
		send: make(chan core.Frame, size),
	}
}

// TrySend queues f for the write loop. It never blocks: a full queue means
// the peer is not writable right now and the frame is refused.
func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.opts.SendBuffer)
	peer := domain.NewPeer(c.Request.RemoteAddr, c.GetString(ClientTokenKey))
	m := core.NewMember(peer, conn)
	ctl.Orch.OnConnect(m)

	ctx, cancel := context.WithCancelCause(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(cancel, m, conn)
}
