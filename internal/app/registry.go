package app

import (
	"sync"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps session ids to their membership. It is the only shared
// mutable state of the relay. Every structural change (create, join,
// leave, prune) happens under mu, so a session with zero members is never
// observable from outside.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]core.SessionService
	joined   map[domain.PeerID]map[domain.SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]core.SessionService),
		joined:   make(map[domain.PeerID]map[domain.SessionID]struct{}),
	}
}

// getOrCreate returns the session for id, creating an empty one when
// missing. Callers must hold mu and must add a member before releasing it.
func (r *Registry) getOrCreate(id domain.SessionID) core.SessionService {
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := core.NewSessionService(&domain.Session{ID: id})
	r.sessions[id] = s
	log.Info().Str("module", "app.registry").Str("session", string(id)).Msg("session created")
	return s
}

// Join adds m to session id. Joining twice is a no-op; the bool reports
// whether membership changed.
func (r *Registry) Join(id domain.SessionID, m core.Member) (core.SessionService, bool) {
	peer := m.Peer().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.getOrCreate(id)
	if !s.AddMember(m) {
		return s, false
	}
	set, ok := r.joined[peer]
	if !ok {
		set = make(map[domain.SessionID]struct{})
		r.joined[peer] = set
	}
	set[id] = struct{}{}
	log.Info().Str("module", "app.registry").Str("session", string(id)).Str("peer", string(peer)).Msg("joined session")
	return s, true
}

// Leave removes peer from a single session.
func (r *Registry) Leave(id domain.SessionID, peer domain.PeerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.leaveLocked(id, peer) {
		return false
	}
	if set, ok := r.joined[peer]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.joined, peer)
		}
	}
	return true
}

// RemoveEverywhere drops peer from every session it joined and returns
// those session ids.
func (r *Registry) RemoveEverywhere(peer domain.PeerID) []domain.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.joined[peer]
	if !ok {
		return nil
	}
	delete(r.joined, peer)
	left := make([]domain.SessionID, 0, len(set))
	for id := range set {
		if r.leaveLocked(id, peer) {
			left = append(left, id)
		}
	}
	log.Info().Str("module", "app.registry").Str("peer", string(peer)).Int("sessions", len(left)).Msg("removed everywhere")
	return left
}

func (r *Registry) leaveLocked(id domain.SessionID, peer domain.PeerID) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	removed := s.RemoveMember(peer)
	if s.MemberCount() == 0 {
		delete(r.sessions, id)
		log.Info().Str("module", "app.registry").Str("session", string(id)).Msg("session pruned")
	}
	return removed
}

// MembersOf returns a point-in-time copy of the session's members. An
// unknown session yields an empty slice.
func (r *Registry) MembersOf(id domain.SessionID) []core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return []core.Member{}
	}
	return s.Members()
}

func (r *Registry) GetSession(id domain.SessionID) (core.SessionService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) SessionsOf(peer domain.PeerID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(r.joined[peer]))
	for id := range r.joined[peer] {
		out = append(out, id)
	}
	return out
}

func (r *Registry) List() []core.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, core.SessionInfo{ID: id, MemberCount: s.MemberCount()})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
