package app

import (
	"fmt"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose queue rejected a frame.
type Policy interface {
	OnBackPressure(session core.SessionService, member core.Member) BackpressureAction
}

// SkipPolicy drops the frame for that member and keeps it joined.
type SkipPolicy struct{}

func (SkipPolicy) OnBackPressure(core.SessionService, core.Member) BackpressureAction {
	return DropFrame
}

// KickPolicy removes the slow member from the session it lagged in.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.SessionService, core.Member) BackpressureAction {
	return KickMember
}

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "skip":
		return SkipPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
