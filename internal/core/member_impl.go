package core

import "github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"

// member implements Member by pairing meta + transport.
type member struct {
	peer *domain.Peer
	conn SignalConnection
}

func NewMember(peer *domain.Peer, conn SignalConnection) Member {
	return &member{peer: peer, conn: conn}
}

func (m *member) Peer() *domain.Peer       { return m.peer }
func (m *member) Signal() SignalConnection { return m.conn }
