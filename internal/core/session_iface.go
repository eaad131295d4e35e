package core

import "github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SendTo  int
	Dropped []Member
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID                domain.PeerID `json:"id"`
	RemoteAddr        string        `json:"remote_addr"`
	HandshakeAccepted bool          `json:"handshake_accepted"`
}

// SessionService is the core-facing API of one session.
// It owns the membership set but never touches transport resources.
type SessionService interface {
	Session() *domain.Session
	MemberCount() int
	MembersSnapshot() []MemberDTO
	// Members returns a point-in-time copy of the membership.
	Members() []Member

	// AddMember reports whether m was not already a member.
	AddMember(m Member) bool
	// RemoveMember reports whether id was a member.
	RemoveMember(id domain.PeerID) bool
	Broadcast(from domain.PeerID, data Frame) PublishResult
}

type SessionInfo struct {
	ID          domain.SessionID `json:"session"`
	MemberCount int              `json:"member_count"`
}
