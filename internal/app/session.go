package app

import (
	"fmt"

	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinResult describes the identity a join resolved to.
type JoinResult struct {
	Room       *domain.Room
	User       *domain.User
	Reattached bool
}

// Join resolves (room, name) to a user. A connected user with the same name
// is a conflict; a disconnected one is taken over with its vote and role.
func Join(rooms *RoomManager, roomID domain.RoomID, name string, role domain.Role) (JoinResult, error) {
	if err := domain.ValidateUsername(name); err != nil {
		return JoinResult{}, err
	}
	room := rooms.GetOrCreate(roomID)

	if u, ok := room.UserByName(name); ok {
		if u.Connected {
			return JoinResult{}, fmt.Errorf("%w: %q", ErrNameConflict, name)
		}
		u.Connected = true
		log.Info().Str("module", "app.session").Str("room", string(roomID)).Str("user", string(u.ID)).Msg("reattached")
		return JoinResult{Room: room, User: u, Reattached: true}, nil
	}

	u, err := domain.NewUser(name, role)
	if err != nil {
		return JoinResult{}, err
	}
	room.AddUser(u)
	log.Info().Str("module", "app.session").Str("room", string(roomID)).Str("user", string(u.ID)).Str("role", string(role)).Msg("joined")
	return JoinResult{Room: room, User: u}, nil
}

// LeaveResult tells the caller whether anyone is left to notify.
type LeaveResult struct {
	Room    *domain.Room // nil when the room was deleted or never existed
	Removed bool
	Ghosted bool
	Deleted bool
}

// Leave takes a user out of its room. With keepGhost the user stays listed as
// disconnected, but only while some other connected user keeps the room alive.
func Leave(rooms *RoomManager, roomID domain.RoomID, userID domain.UserID, keepGhost bool) LeaveResult {
	room, ok := rooms.Get(roomID)
	if !ok {
		return LeaveResult{}
	}
	u, ok := room.UserByID(userID)
	if !ok {
		return LeaveResult{Room: room}
	}

	if keepGhost && u.Connected && room.ConnectedCount() > 1 {
		u.Connected = false
		log.Info().Str("module", "app.session").Str("room", string(roomID)).Str("user", string(userID)).Msg("marked disconnected")
		return LeaveResult{Room: room, Ghosted: true}
	}

	room.RemoveUser(userID)
	log.Info().Str("module", "app.session").Str("room", string(roomID)).Str("user", string(userID)).Msg("left")
	return finishRemoval(rooms, room)
}

// Reap removes a ghost whose grace period ran out. A user that reattached in
// the meantime is left alone.
func Reap(rooms *RoomManager, roomID domain.RoomID, userID domain.UserID) LeaveResult {
	room, ok := rooms.Get(roomID)
	if !ok {
		return LeaveResult{}
	}
	u, ok := room.UserByID(userID)
	if !ok || u.Connected {
		return LeaveResult{Room: room}
	}
	room.RemoveUser(userID)
	log.Info().Str("module", "app.session").Str("room", string(roomID)).Str("user", string(userID)).Msg("reaped")
	return finishRemoval(rooms, room)
}

func finishRemoval(rooms *RoomManager, room *domain.Room) LeaveResult {
	if room.ConnectedCount() == 0 {
		rooms.Delete(room.ID)
		return LeaveResult{Removed: true, Deleted: true}
	}
	return LeaveResult{Room: room, Removed: true}
}
