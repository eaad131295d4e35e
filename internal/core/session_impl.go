package core

import (
	"sync"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/rs/zerolog/log"
)

// sessionImpl is a threadsafe in-memory membership set.
// It never closes adapter-owned resources.
type sessionImpl struct {
	session *domain.Session
	mu      sync.RWMutex
	byPeer  map[domain.PeerID]Member
}

func NewSessionService(session *domain.Session) SessionService {
	return &sessionImpl{
		session: session,
		byPeer:  make(map[domain.PeerID]Member),
	}
}

func (s *sessionImpl) Session() *domain.Session { return s.session }

func (s *sessionImpl) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPeer)
}

func (s *sessionImpl) AddMember(m Member) bool {
	id := m.Peer().ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPeer[id]; ok {
		return false
	}
	s.byPeer[id] = m
	log.Debug().Str("module", "core.session").Str("session", string(s.session.ID)).Str("peer", string(id)).Msg("member added")
	return true
}

func (s *sessionImpl) RemoveMember(id domain.PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPeer[id]; !ok {
		return false
	}
	delete(s.byPeer, id)
	log.Debug().Str("module", "core.session").Str("session", string(s.session.ID)).Str("peer", string(id)).Msg("member removed")
	return true
}

func (s *sessionImpl) Members() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Member, 0, len(s.byPeer))
	for _, m := range s.byPeer {
		out = append(out, m)
	}
	return out
}

// Broadcast delivers data to every member except from. Delivery runs on a
// snapshot taken under the read lock, so joins and leaves that race with
// the fan-out never see a half-iterated set.
func (s *sessionImpl) Broadcast(from domain.PeerID, data Frame) PublishResult {
	res := PublishResult{}
	for _, m := range s.Members() {
		if m.Peer().ID == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.session").Str("session", string(s.session.ID)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (s *sessionImpl) MembersSnapshot() []MemberDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemberDTO, 0, len(s.byPeer))
	for _, m := range s.byPeer {
		p := m.Peer()
		out = append(out, MemberDTO{ID: p.ID, RemoteAddr: p.RemoteAddr, HandshakeAccepted: p.HandshakeAccepted()})
	}
	return out
}
