package core

import (
	"time"

	"github.com/dkeye/estimate/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// Publisher fans frames out to the connections subscribed to a room code.
// It knows nothing about room state.
type Publisher interface {
	Subscribe(room domain.RoomID, sid SessionID, conn SignalConnection)
	Unsubscribe(room domain.RoomID, sid SessionID)
	Publish(room domain.RoomID, data Frame) PublishResult
	Subscribers(room domain.RoomID) int
}

type RoomInfo struct {
	ID            domain.RoomID `json:"id"`
	UserCount     int           `json:"userCount"`
	VotesRevealed bool          `json:"votesRevealed"`
	CreatedAt     time.Time     `json:"createdAt"`
}
