package core

import (
	"encoding/json"

	"github.com/dkeye/estimate/internal/domain"
)

// Client to server events.
const (
	EventJoinRoom   = "join-room"
	EventVoteCast   = "vote-cast"
	EventVote       = "vote"
	EventRevealVote = "reveal-votes"
	EventResetVotes = "reset-votes"
	EventLeaveRoom  = "leave-room"
	EventWhoAmI     = "whoami"
	EventPing       = "ping"
)

// Server to client events.
const (
	EventRoomUpdated   = "room-updated"
	EventVotesRevealed = "votes-revealed"
	EventError         = "error"
	EventJoined        = "joined"
	EventLeft          = "left"
	EventPong          = "pong"
)

// Envelope is the shape of every message on the wire.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Encode wraps data in an envelope and marshals it into a Frame.
func Encode(typ string, data any) (Frame, error) {
	return json.Marshal(outEnvelope{Type: typ, Data: data})
}

// EncodeError builds an error event. Its data is the bare message string.
func EncodeError(err error) Frame {
	f, _ := Encode(EventError, err.Error())
	return f
}

// Identity is the data of joined and whoami events.
type Identity struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name,omitempty"`
	Role   domain.Role   `json:"role,omitempty"`
}
