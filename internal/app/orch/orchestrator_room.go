package orch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNoFreeRoomCode = errors.New("no free room code")

// Join admits the connection into roomID under name. A connection that is
// already in a room leaves it first.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, roomID, name, role string) (core.Identity, error) {
	rid, err := domain.ParseRoomID(roomID)
	if err != nil {
		return core.Identity{}, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return core.Identity{}, err
	}
	if err := domain.ValidateUsername(name); err != nil {
		return core.Identity{}, err
	}

	var (
		id    core.Identity
		opErr error
	)
	err = o.submit(ctx, func() {
		conn, ok := o.Registry.GetSignal(sid)
		if !ok {
			opErr = app.ErrNotJoined
			return
		}
		if from, _, ok := o.Registry.RoomOf(sid); ok {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("moving to another room")
			o.leave(sid, false)
		}

		res, err := app.Join(o.Rooms, rid, name, r)
		if err != nil {
			opErr = err
			return
		}
		if res.Reattached {
			o.cancelReap(rid, res.User.ID)
		}
		o.Registry.Attach(sid, rid, res.User.ID)
		o.Hub.Subscribe(rid, sid, conn)

		id = core.Identity{RoomID: rid, UserID: res.User.ID, Name: res.User.Name, Role: res.User.Role}
		o.reply(sid, conn, core.EventJoined, id)
		o.publish(res.Room, core.EventRoomUpdated)
	})
	if err != nil {
		return core.Identity{}, err
	}
	return id, opErr
}

// Leave takes the connection out of its room without closing it.
func (o *Orchestrator) Leave(ctx context.Context, sid core.SessionID) error {
	var opErr error
	err := o.submit(ctx, func() {
		if _, _, ok := o.Registry.RoomOf(sid); !ok {
			opErr = app.ErrNotJoined
			return
		}
		o.leave(sid, false)
		if conn, ok := o.Registry.GetSignal(sid); ok {
			o.reply(sid, conn, core.EventLeft, nil)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

// leave must run on the loop.
func (o *Orchestrator) leave(sid core.SessionID, keepGhost bool) {
	roomID, userID, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	o.Hub.Unsubscribe(roomID, sid)
	o.Registry.Detach(sid)

	res := app.Leave(o.Rooms, roomID, userID, keepGhost)
	if res.Ghosted {
		o.scheduleReap(roomID, userID)
	}
	if res.Room != nil && (res.Removed || res.Ghosted) {
		o.publish(res.Room, core.EventRoomUpdated)
	}
}

func (o *Orchestrator) scheduleReap(roomID domain.RoomID, userID domain.UserID) {
	key := reapKey{room: roomID, user: userID}
	o.cancelReap(roomID, userID)

	var t *time.Timer
	t = time.AfterFunc(o.Grace, func() {
		_ = o.submit(context.Background(), func() {
			if o.reaps[key] != t {
				return
			}
			delete(o.reaps, key)
			res := app.Reap(o.Rooms, roomID, userID)
			if res.Room != nil && res.Removed {
				o.publish(res.Room, core.EventRoomUpdated)
			}
		})
	})
	o.reaps[key] = t
}

func (o *Orchestrator) cancelReap(roomID domain.RoomID, userID domain.UserID) {
	key := reapKey{room: roomID, user: userID}
	if t, ok := o.reaps[key]; ok {
		t.Stop()
		delete(o.reaps, key)
	}
}

// ListRooms returns every live room ordered by code.
func (o *Orchestrator) ListRooms(ctx context.Context) ([]core.RoomInfo, error) {
	var out []core.RoomInfo
	err := o.submit(ctx, func() {
		out = o.Rooms.List()
	})
	return out, err
}

// Snapshot returns a detached copy of one room.
func (o *Orchestrator) Snapshot(ctx context.Context, roomID domain.RoomID) (domain.Room, error) {
	var (
		snap  domain.Room
		found bool
	)
	err := o.submit(ctx, func() {
		var room *domain.Room
		if room, found = o.Rooms.Get(roomID); found {
			snap = room.Snapshot()
		}
	})
	if err != nil {
		return domain.Room{}, err
	}
	if !found {
		return domain.Room{}, fmt.Errorf("%w: %s", app.ErrRoomNotFound, roomID)
	}
	return snap, nil
}

const roomCodeSpace = 10000

// NewRoomCode picks a 4-digit code that no live room uses.
func (o *Orchestrator) NewRoomCode(ctx context.Context) (domain.RoomID, error) {
	var code domain.RoomID
	err := o.submit(ctx, func() {
		start := rand.IntN(roomCodeSpace)
		for i := range roomCodeSpace {
			c := domain.RoomID(fmt.Sprintf("%04d", (start+i)%roomCodeSpace))
			if _, taken := o.Rooms.Get(c); !taken {
				code = c
				return
			}
		}
	})
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", ErrNoFreeRoomCode
	}
	return code, nil
}
