package fanout

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/estimate/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFull = errors.New("send buffer full")

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestPublishReachesOnlyRoomSubscribers(t *testing.T) {
	h := NewHub()
	a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Subscribe("1234", "a", a)
	h.Subscribe("1234", "b", b)
	h.Subscribe("9999", "o", other)

	res := h.Publish("1234", core.Frame(`{"type":"room-updated"}`))
	assert.Equal(t, 2, res.SendTo)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
	assert.Equal(t, 0, other.received())
}

func TestPublishToUnknownRoom(t *testing.T) {
	h := NewHub()
	res := h.Publish("nope", core.Frame("x"))
	assert.Zero(t, res.SendTo)
	assert.Empty(t, res.Dropped)
}

func TestPublishDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	fast, slow := &fakeConn{}, &fakeConn{full: true}
	h.Subscribe("1234", "fast", fast)
	h.Subscribe("1234", "slow", slow)

	res := h.Publish("1234", core.Frame("x"))
	assert.Equal(t, 1, res.SendTo)
	require.Equal(t, []core.SessionID{"slow"}, res.Dropped)
	assert.Equal(t, 1, h.Subscribers("1234"))

	// once dropped it is not retried
	slow.full = false
	res = h.Publish("1234", core.Frame("y"))
	assert.Equal(t, 1, res.SendTo)
	assert.Equal(t, 0, slow.received())
	assert.Equal(t, 2, fast.received())
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	h.Subscribe("1234", "a", a)
	h.Subscribe("1234", "b", b)

	h.Unsubscribe("1234", "a")
	assert.Equal(t, 1, h.Subscribers("1234"))
	h.Publish("1234", core.Frame("x"))
	assert.Equal(t, 0, a.received())

	h.Unsubscribe("1234", "b")
	assert.Equal(t, 0, h.Subscribers("1234"))
	h.mu.RLock()
	_, ok := h.topics["1234"]
	h.mu.RUnlock()
	assert.False(t, ok, "empty topic should be dropped")

	h.Unsubscribe("1234", "b")
}

func TestResubscribeReplacesConnection(t *testing.T) {
	h := NewHub()
	old, fresh := &fakeConn{}, &fakeConn{}
	h.Subscribe("1234", "a", old)
	h.Subscribe("1234", "a", fresh)

	res := h.Publish("1234", core.Frame("x"))
	assert.Equal(t, 1, res.SendTo)
	assert.Equal(t, 0, old.received())
	assert.Equal(t, 1, fresh.received())
}

func TestSubscriberState(t *testing.T) {
	s := NewSubscriber(&fakeConn{})
	assert.Equal(t, SubscriberStateOk, s.GetState())
	s.MarkDelete()
	assert.Equal(t, SubscriberStateDelete, s.GetState())
	s.MarkOk()
	assert.Equal(t, SubscriberStateOk, s.GetState())
}

func TestConcurrentPublish(t *testing.T) {
	h := NewHub()
	conns := make([]*fakeConn, 8)
	for i := range conns {
		conns[i] = &fakeConn{}
		h.Subscribe("1234", core.SessionID(fmt.Sprintf("s%d", i)), conns[i])
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Publish("1234", core.Frame("x"))
		}()
	}
	wg.Wait()

	for _, c := range conns {
		assert.Equal(t, 16, c.received())
	}
}
