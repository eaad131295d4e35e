// Package domain contains entities without transport or lifecycle logic.
package domain

import (
	"sync/atomic"

	"github.com/google/uuid"
)

type PeerID string

// Peer is the diagnostic identity of one live signaling connection.
// The relay never keys behaviour on anything but ID.
type Peer struct {
	ID          PeerID `json:"id"`
	RemoteAddr  string `json:"remote_addr"`
	ClientToken string `json:"-"`

	handshake atomic.Bool
}

// NewPeer assigns a fresh random ID.
func NewPeer(remoteAddr, clientToken string) *Peer {
	return &Peer{
		ID:          PeerID(uuid.NewString()),
		RemoteAddr:  remoteAddr,
		ClientToken: clientToken,
	}
}

func (p *Peer) MarkHandshakeAccepted() { p.handshake.Store(true) }

func (p *Peer) HandshakeAccepted() bool { return p.handshake.Load() }
