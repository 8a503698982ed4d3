package app

import (
	"sort"

	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager is the room registry. It is owned by the event loop and is
// never touched from two goroutines at once, so it carries no lock.
type RoomManager struct {
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*domain.Room)}
}

func (m *RoomManager) GetOrCreate(id domain.RoomID) *domain.Room {
	if room, ok := m.rooms[id]; ok {
		return room
	}
	room := domain.NewRoom(id)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

func (m *RoomManager) Get(id domain.RoomID) (*domain.Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManager) Delete(id domain.RoomID) {
	if _, ok := m.rooms[id]; !ok {
		return
	}
	delete(m.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
}

func (m *RoomManager) Len() int { return len(m.rooms) }

// List returns rooms ordered by code.
func (m *RoomManager) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, core.RoomInfo{
			ID:            id,
			UserCount:     len(r.Users),
			VotesRevealed: r.VotesRevealed,
			CreatedAt:     r.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
