package fanout

import (
	"sync/atomic"

	"github.com/dkeye/estimate/internal/core"
)

type SubscriberState int32

const (
	SubscriberStateOk SubscriberState = iota
	SubscriberStateDelete
)

// Subscriber is a single connection listening on a topic.
type Subscriber struct {
	Conn  core.SignalConnection
	state atomic.Int32 // Zero by default (SubscriberStateOk)
}

func NewSubscriber(conn core.SignalConnection) *Subscriber {
	return &Subscriber{Conn: conn}
}

func (s *Subscriber) GetState() SubscriberState {
	return SubscriberState(s.state.Load())
}

func (s *Subscriber) MarkOk() {
	s.state.Store(int32(SubscriberStateOk))
}

func (s *Subscriber) MarkDelete() {
	s.state.Store(int32(SubscriberStateDelete))
}
