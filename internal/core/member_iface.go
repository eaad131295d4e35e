package core

import "github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"

// Member binds a domain.Peer and its transport endpoint.
// This is what a session stores and fans out to.
type Member interface {
	Peer() *domain.Peer
	Signal() SignalConnection
}
