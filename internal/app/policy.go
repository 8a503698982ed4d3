package app

import (
	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a subscriber whose outbound queue was full
// during a snapshot broadcast. The snapshot is already lost for it.
type Policy interface {
	OnBackPressure(room domain.RoomID, sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy keeps slow subscribers subscribed. They miss the dropped
// snapshot and catch up on the next one.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return NoAction
}
