package app

import "errors"

// Rejections reported to the originating connection. None of them changes state.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNameConflict     = errors.New("name already in use in this room")
	ErrUserNotFound     = errors.New("user not found in room")
	ErrNotAVoter        = errors.New("spectators cannot vote")
	ErrAlreadyRevealed  = errors.New("votes already revealed")
	ErrNotJoined        = errors.New("join a room first")
	ErrNotInRoom        = errors.New("not a member of that room")
	ErrIdentityMismatch = errors.New("cannot act on behalf of another user")
)
