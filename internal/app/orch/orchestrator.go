// Package orch routes decoded signaling frames between session members.
package orch

import (
	"errors"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/app"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the message router. It holds no state of its own; the
// registry is the only mutable part and is shared by every connection.
type Orchestrator struct {
	Registry  *app.Registry
	Handshake *app.HandshakeValidator
	Policy    app.Policy
	Metrics   *metrics.Metrics
}

// OnFrame handles one inbound frame from m. It never reports an error to
// the sender: malformed frames and frames without a session are dropped.
func (o *Orchestrator) OnFrame(m core.Member, data core.Frame) {
	peer := m.Peer().ID
	msg, err := core.DecodeMessage(data)
	if err != nil {
		o.Metrics.FrameDropped(metrics.ReasonMalformed)
		log.Debug().Err(err).Str("module", "orch").Str("peer", string(peer)).Msg("dropping frame")
		return
	}
	o.Metrics.FrameReceived(string(msg.Type))

	if msg.Type == core.MessageHandshake {
		o.onHandshake(m)
		return
	}

	sid, err := domain.ParseSessionID(msg.SessionID)
	if err != nil {
		o.Metrics.FrameDropped(metrics.ReasonNoSession)
		log.Debug().Str("module", "orch").Str("peer", string(peer)).Str("type", string(msg.Type)).Msg("dropping frame without session")
		return
	}

	session := o.Join(sid, m)
	res := session.Broadcast(peer, data)
	o.Metrics.Delivered(res.SendTo, len(res.Dropped))
	o.onDropped(session, res.Dropped)
}

func (o *Orchestrator) onHandshake(m core.Member) {
	reply := o.Handshake.Accept(m)
	o.Metrics.Handshake()
	if err := m.Signal().TrySend(reply); err != nil && !errors.Is(err, core.ErrConnClosed) {
		log.Debug().Err(err).Str("module", "orch").Str("peer", string(m.Peer().ID)).Msg("handshake reply not queued")
	}
}

func (o *Orchestrator) onDropped(session core.SessionService, dropped []core.Member) {
	if o.Policy == nil {
		return
	}
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(session, slow) {
		case app.KickMember:
			if o.Registry.Leave(session.Session().ID, slow.Peer().ID) {
				o.Metrics.SetSessions(o.Registry.Len())
				log.Info().Str("module", "orch").Str("session", string(session.Session().ID)).Str("peer", string(slow.Peer().ID)).Msg("kicked slow member")
			}
		case app.DropFrame, app.NoAction:
		}
	}
}
