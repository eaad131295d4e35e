package signal

import (
	"context"
	"errors"
	"time"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// errReadClosed cancels a connection's context when its read side ends.
var errReadClosed = errors.New("read side closed")

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			// The reader already saw the peer go away; only a server
			// shutdown announces itself.
			if errors.Is(context.Cause(ctx), errReadClosed) {
				return
			}
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down"),
				time.Now().Add(ctl.opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump feeds frames to the router until the transport fails. Cleanup
// removes the member from every session before the socket is released.
func (ctl *SignalWSController) readPump(cancel context.CancelCauseFunc, m core.Member, c *WsSignalConn) {
	peer := string(m.Peer().ID)
	defer func() {
		cancel(errReadClosed)
		ctl.Orch.OnDisconnect(m)
		c.Close()
		log.Info().Str("module", "signal").Str("peer", peer).Msg("readPump closed")
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("peer", peer).Msg("readPump read error")
			}
			return
		}
		ctl.Orch.OnFrame(m, core.Frame(data))
	}
}
