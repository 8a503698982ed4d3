package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrStopped = errors.New("orchestrator stopped")

type Options struct {
	Policy app.Policy
	// Grace keeps a disconnected user listed for this long. Zero removes at once.
	Grace time.Duration
	// RevealEvent names the snapshot sent on reveal.
	RevealEvent string
}

type reapKey struct {
	room domain.RoomID
	user domain.UserID
}

// Orchestrator is the single owner of room state. Every intent is queued onto
// one goroutine and runs to completion before the next one starts, so neither
// Registry nor RoomManager needs locking.
type Orchestrator struct {
	Registry    *app.Registry
	Rooms       *app.RoomManager
	Policy      app.Policy
	Hub         core.Publisher
	Grace       time.Duration
	RevealEvent string

	cmds    chan func()
	stopped chan struct{}
	reaps   map[reapKey]*time.Timer
}

func New(hub core.Publisher, opts Options) *Orchestrator {
	if opts.Policy == nil {
		opts.Policy = app.SimplePolicy{}
	}
	if opts.RevealEvent == "" {
		opts.RevealEvent = core.EventVotesRevealed
	}
	return &Orchestrator{
		Registry:    app.NewRegistry(),
		Rooms:       app.NewRoomManager(),
		Policy:      opts.Policy,
		Hub:         hub,
		Grace:       opts.Grace,
		RevealEvent: opts.RevealEvent,
		cmds:        make(chan func()),
		stopped:     make(chan struct{}),
		reaps:       make(map[reapKey]*time.Timer),
	}
}

// Run processes intents until ctx is done, then drops every connection.
func (o *Orchestrator) Run(ctx context.Context) {
	log.Info().Str("module", "orch").Msg("event loop started")
	for {
		select {
		case fn := <-o.cmds:
			fn()
		case <-ctx.Done():
			for key, t := range o.reaps {
				t.Stop()
				delete(o.reaps, key)
			}
			o.Registry.CancelAll()
			close(o.stopped)
			log.Info().Str("module", "orch").Msg("event loop stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (o *Orchestrator) Done() <-chan struct{} { return o.stopped }

// submit runs fn on the loop and waits for it. Once the loop accepted fn it
// always finishes, so only the hand-off can be abandoned.
func (o *Orchestrator) submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case o.cmds <- func() { defer close(done); fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-o.stopped:
		return ErrStopped
	}
	<-done
	return nil
}

// Connect registers a fresh connection. cancel must stop its pumps.
func (o *Orchestrator) Connect(ctx context.Context, sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) error {
	return o.submit(ctx, func() {
		o.Registry.BindSignal(sid, conn, cancel)
	})
}

// Disconnect runs Leave for whatever the connection was bound to and forgets it.
func (o *Orchestrator) Disconnect(ctx context.Context, sid core.SessionID) error {
	return o.submit(ctx, func() {
		o.leave(sid, o.Grace > 0)
		o.Registry.Unbind(sid)
	})
}

// WhoAmI returns the identity bound to sid, zero if unbound.
func (o *Orchestrator) WhoAmI(ctx context.Context, sid core.SessionID) (core.Identity, error) {
	var id core.Identity
	err := o.submit(ctx, func() {
		roomID, userID, ok := o.Registry.RoomOf(sid)
		if !ok {
			return
		}
		id.RoomID, id.UserID = roomID, userID
		if room, ok := o.Rooms.Get(roomID); ok {
			if u, ok := room.UserByID(userID); ok {
				id.Name, id.Role = u.Name, u.Role
			}
		}
	})
	return id, err
}
