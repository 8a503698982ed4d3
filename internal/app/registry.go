package app

import (
	"context"

	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID domain.RoomID
	UserID domain.UserID
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Registry binds physical connections to logical (room, user) identities.
// Like RoomManager it belongs to the event loop.
type Registry struct {
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

func (r *Registry) BindSignal(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.sessions[sid] = &sessionEntry{Signal: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSignal(sid core.SessionID) (core.SignalConnection, bool) {
	if e, ok := r.sessions[sid]; ok {
		return e.Signal, true
	}
	return nil, false
}

// Attach records the logical identity a connection joined as.
func (r *Registry) Attach(sid core.SessionID, room domain.RoomID, user domain.UserID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomID, e.UserID = room, user
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Str("user", string(user)).Msg("attached")
	return true
}

// Detach forgets the identity but keeps the connection registered.
func (r *Registry) Detach(sid core.SessionID) {
	if e, ok := r.sessions[sid]; ok {
		e.RoomID, e.UserID = "", ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("detached")
}

func (r *Registry) Unbind(sid core.SessionID) {
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, domain.UserID, bool) {
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	return e.RoomID, e.UserID, true
}

func (r *Registry) Len() int { return len(r.sessions) }

// Cancel stops the connection's pumps; the adapter then reports the disconnect.
func (r *Registry) Cancel(sid core.SessionID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// CancelAll is used on shutdown.
func (r *Registry) CancelAll() {
	for sid := range r.sessions {
		r.Cancel(sid)
	}
}
