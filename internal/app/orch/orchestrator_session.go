package orch

import (
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join puts m into sid, creating the session on first use.
func (o *Orchestrator) Join(sid domain.SessionID, m core.Member) core.SessionService {
	session, changed := o.Registry.Join(sid, m)
	if changed {
		o.Metrics.SetSessions(o.Registry.Len())
		log.Info().Str("module", "orch").Str("peer", string(m.Peer().ID)).Str("session", string(sid)).Msg("added to session")
	}
	return session
}

// OnConnect is called once the transport accepted m.
func (o *Orchestrator) OnConnect(m core.Member) {
	o.Metrics.ConnectionOpened()
	log.Info().Str("module", "orch").Str("peer", string(m.Peer().ID)).Str("remote", m.Peer().RemoteAddr).Msg("peer connected")
}

// OnDisconnect removes m from every session before returning, so no later
// fan-out can pick it up. Other members are not notified.
func (o *Orchestrator) OnDisconnect(m core.Member) {
	left := o.Registry.RemoveEverywhere(m.Peer().ID)
	o.Metrics.ConnectionClosed()
	o.Metrics.SetSessions(o.Registry.Len())
	log.Info().Str("module", "orch").Str("peer", string(m.Peer().ID)).Int("sessions_left", len(left)).Msg("peer disconnected")
}
