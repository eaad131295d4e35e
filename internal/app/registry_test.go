package app

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newMember() core.Member {
	return core.NewMember(domain.NewPeer("127.0.0.1:0", ""), nopConn{})
}

func TestRegistryJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	a := newMember()

	if _, changed := r.Join("room1", a); !changed {
		t.Fatalf("first Join reported no change")
	}
	if _, changed := r.Join("room1", a); changed {
		t.Fatalf("second Join reported a change")
	}
	if got := len(r.MembersOf("room1")); got != 1 {
		t.Fatalf("MembersOf len=%d, want 1", got)
	}
}

func TestRegistryMembersOfUnknownSession(t *testing.T) {
	r := NewRegistry()
	members := r.MembersOf("nope")
	if members == nil || len(members) != 0 {
		t.Fatalf("MembersOf(unknown)=%v, want empty non-nil slice", members)
	}
	if r.Len() != 0 {
		t.Fatalf("MembersOf created a session")
	}
}

func TestRegistryRemoveEverywherePrunes(t *testing.T) {
	r := NewRegistry()
	a, b := newMember(), newMember()
	r.Join("room1", a)
	r.Join("room2", a)
	r.Join("room2", b)

	left := r.RemoveEverywhere(a.Peer().ID)
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	if len(left) != 2 || left[0] != "room1" || left[1] != "room2" {
		t.Fatalf("left=%v, want [room1 room2]", left)
	}
	if _, ok := r.GetSession("room1"); ok {
		t.Fatalf("empty session room1 still registered")
	}
	members := r.MembersOf("room2")
	if len(members) != 1 || members[0].Peer().ID != b.Peer().ID {
		t.Fatalf("room2 members=%v, want only b", members)
	}
	if got := r.SessionsOf(a.Peer().ID); len(got) != 0 {
		t.Fatalf("SessionsOf(a)=%v after removal", got)
	}
	if got := r.RemoveEverywhere(a.Peer().ID); got != nil {
		t.Fatalf("second RemoveEverywhere=%v, want nil", got)
	}
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry()
	a := newMember()
	r.Join("room1", a)
	r.Join("room2", a)

	if !r.Leave("room1", a.Peer().ID) {
		t.Fatalf("Leave reported not a member")
	}
	if r.Leave("room1", a.Peer().ID) {
		t.Fatalf("second Leave reported a member")
	}
	if got := r.SessionsOf(a.Peer().ID); len(got) != 1 || got[0] != "room2" {
		t.Fatalf("SessionsOf=%v, want [room2]", got)
	}
	if r.Len() != 1 {
		t.Fatalf("Len=%d, want 1", r.Len())
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Join("room1", newMember())
	r.Join("room1", newMember())
	r.Join("room2", newMember())

	got := map[domain.SessionID]int{}
	for _, info := range r.List() {
		got[info.ID] = info.MemberCount
	}
	if got["room1"] != 2 || got["room2"] != 1 || len(got) != 2 {
		t.Fatalf("List=%v", got)
	}
}

func TestRegistryConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()
	const peers = 64
	members := make([]core.Member, peers)
	for i := range members {
		members[i] = newMember()
	}

	var g errgroup.Group
	for i, m := range members {
		g.Go(func() error {
			for round := 0; round < 50; round++ {
				id := domain.SessionID(fmt.Sprintf("room%d", (i+round)%4))
				r.Join(id, m)
				_ = r.MembersOf(id)
				if round%3 == 0 {
					r.RemoveEverywhere(m.Peer().ID)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("stress: %v", err)
	}

	var wg sync.WaitGroup
	for _, m := range members {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RemoveEverywhere(m.Peer().ID)
		}()
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Fatalf("sessions left after everyone disconnected: %v", r.List())
	}
}
