package fanout

import (
	"maps"
	"sync"

	"github.com/dkeye/estimate/internal/core"
	"github.com/rs/zerolog"
)

// Topic holds the subscribers of one room code.
type Topic struct {
	mu   sync.RWMutex
	subs map[core.SessionID]*Subscriber
}

func NewTopic() *Topic {
	return &Topic{subs: make(map[core.SessionID]*Subscriber)}
}

// forward sends frame to every live subscriber. Subscribers that cannot take
// the frame are marked for delete and reported as dropped.
func (t *Topic) forward(frame core.Frame, logger *zerolog.Logger) core.PublishResult {
	t.mu.RLock()
	snapshot := make(map[core.SessionID]*Subscriber, len(t.subs))
	maps.Copy(snapshot, t.subs)
	t.mu.RUnlock()

	var res core.PublishResult
	dirty := make([]core.SessionID, 0, len(snapshot))
	for sid, sub := range snapshot {
		switch sub.GetState() {
		case SubscriberStateDelete:
			dirty = append(dirty, sid)
		case SubscriberStateOk:
			if err := sub.Conn.TrySend(frame); err != nil {
				logger.Warn().
					Err(err).
					Str("sid", string(sid)).
					Msg("send failed, marking subscriber as delete")
				sub.MarkDelete()
				dirty = append(dirty, sid)
				res.Dropped = append(res.Dropped, sid)
				continue
			}
			res.SendTo++
		}
	}

	// Cleanup is done outside the RLock.
	if len(dirty) > 0 {
		t.cleanupDeleted(dirty)
	}
	return res
}

func (t *Topic) cleanupDeleted(dirty []core.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sid := range dirty {
		if sub, ok := t.subs[sid]; ok && sub.GetState() == SubscriberStateDelete {
			delete(t.subs, sid)
		}
	}
}

func (t *Topic) add(sid core.SessionID, sub *Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs[sid] = sub
}

// remove deletes sid and reports how many subscribers remain.
func (t *Topic) remove(sid core.SessionID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sub, ok := t.subs[sid]; ok {
		sub.MarkDelete()
		delete(t.subs, sid)
	}
	return len(t.subs)
}

func (t *Topic) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
