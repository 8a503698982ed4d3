package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
)

// bound resolves the identity sid joined as. A non-empty roomID must match it.
func (o *Orchestrator) bound(sid core.SessionID, roomID string) (domain.RoomID, domain.UserID, error) {
	rid, uid, ok := o.Registry.RoomOf(sid)
	if !ok {
		return "", "", app.ErrNotJoined
	}
	if roomID != "" && domain.RoomID(roomID) != rid {
		return "", "", fmt.Errorf("%w: %s", app.ErrNotInRoom, roomID)
	}
	return rid, uid, nil
}

// CastVote records vote for the connection's user. userID and roomID are
// optional and, when set, must name the bound identity.
func (o *Orchestrator) CastVote(ctx context.Context, sid core.SessionID, roomID, userID, vote string) error {
	v, err := domain.ParseVote(vote)
	if err != nil {
		return err
	}
	var opErr error
	err = o.submit(ctx, func() {
		rid, uid, err := o.bound(sid, roomID)
		if err != nil {
			opErr = err
			return
		}
		if userID != "" && domain.UserID(userID) != uid {
			opErr = app.ErrIdentityMismatch
			return
		}
		room, err := app.CastVote(o.Rooms, rid, uid, v)
		if err != nil {
			opErr = err
			return
		}
		o.publish(room, core.EventRoomUpdated)
	})
	if err != nil {
		return err
	}
	return opErr
}

// Reveal exposes the votes of the connection's room.
func (o *Orchestrator) Reveal(ctx context.Context, sid core.SessionID, roomID string) error {
	return o.roomIntent(ctx, sid, roomID, app.Reveal, o.RevealEvent)
}

// Reset clears the votes of the connection's room and reopens it.
func (o *Orchestrator) Reset(ctx context.Context, sid core.SessionID, roomID string) error {
	return o.roomIntent(ctx, sid, roomID, app.Reset, core.EventRoomUpdated)
}

func (o *Orchestrator) roomIntent(
	ctx context.Context,
	sid core.SessionID,
	roomID string,
	apply func(*app.RoomManager, domain.RoomID) (*domain.Room, error),
	event string,
) error {
	var opErr error
	err := o.submit(ctx, func() {
		rid, _, err := o.bound(sid, roomID)
		if err != nil {
			opErr = err
			return
		}
		room, err := apply(o.Rooms, rid)
		if err != nil {
			opErr = err
			return
		}
		o.publish(room, event)
	})
	if err != nil {
		return err
	}
	return opErr
}
