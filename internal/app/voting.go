package app

import (
	"fmt"

	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// A room is Open while VotesRevealed is false and Revealed otherwise.

// CastVote records or overwrites a voter's card while the room is Open.
func CastVote(rooms *RoomManager, roomID domain.RoomID, userID domain.UserID, vote domain.Vote) (*domain.Room, error) {
	room, ok := rooms.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	u, ok := room.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if !u.IsVoter() {
		return nil, ErrNotAVoter
	}
	if room.VotesRevealed {
		return nil, ErrAlreadyRevealed
	}
	u.SetVote(vote)
	log.Info().Str("module", "app.voting").Str("room", string(roomID)).Str("user", string(userID)).Msg("vote cast")
	return room, nil
}

// Reveal moves the room to Revealed. No minimum number of votes is required,
// and revealing twice is a no-op.
func Reveal(rooms *RoomManager, roomID domain.RoomID) (*domain.Room, error) {
	room, ok := rooms.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	room.VotesRevealed = true
	log.Info().Str("module", "app.voting").Str("room", string(roomID)).Msg("votes revealed")
	return room, nil
}

// Reset clears every voter's card and reopens the room.
func Reset(rooms *RoomManager, roomID domain.RoomID) (*domain.Room, error) {
	room, ok := rooms.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	for _, u := range room.Users {
		if u.IsVoter() {
			u.ClearVote()
		}
	}
	room.VotesRevealed = false
	log.Info().Str("module", "app.voting").Str("room", string(roomID)).Msg("votes reset")
	return room, nil
}
