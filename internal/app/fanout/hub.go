package fanout

import (
	"sync"

	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub is the room-code keyed pub/sub used for snapshots. It has no idea what
// a room contains; it only knows who listens to which code.
type Hub struct {
	mu     sync.RWMutex
	topics map[domain.RoomID]*Topic
}

var _ core.Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{topics: make(map[domain.RoomID]*Topic)}
}

// Subscribe adds conn to room's topic, replacing an earlier subscription of sid.
func (h *Hub) Subscribe(room domain.RoomID, sid core.SessionID, conn core.SignalConnection) {
	h.mu.Lock()
	t, ok := h.topics[room]
	if !ok {
		t = NewTopic()
		h.topics[room] = t
	}
	t.add(sid, NewSubscriber(conn))
	h.mu.Unlock()

	log.Debug().Str("module", "fanout").Str("room", string(room)).Str("sid", string(sid)).Msg("subscribed")
}

// Unsubscribe removes sid from room and drops the topic once nobody listens.
func (h *Hub) Unsubscribe(room domain.RoomID, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[room]
	if !ok {
		return
	}
	if t.remove(sid) == 0 {
		delete(h.topics, room)
	}
	log.Debug().Str("module", "fanout").Str("room", string(room)).Str("sid", string(sid)).Msg("unsubscribed")
}

// Publish delivers frame to every subscriber of room and nobody else.
func (h *Hub) Publish(room domain.RoomID, frame core.Frame) core.PublishResult {
	h.mu.RLock()
	t, ok := h.topics[room]
	h.mu.RUnlock()
	if !ok {
		return core.PublishResult{}
	}
	logger := log.With().Str("module", "fanout").Str("room", string(room)).Logger()
	res := t.forward(frame, &logger)
	logger.Debug().Int("send_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("published")
	return res
}

func (h *Hub) Subscribers(room domain.RoomID) int {
	h.mu.RLock()
	t, ok := h.topics[room]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return t.len()
}
