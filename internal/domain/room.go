package domain

import (
	"errors"
	"time"
)

const MaxRoomIDLen = 36

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type RoomID string

func ParseRoomID(s string) (RoomID, error) {
	if s == "" {
		return "", ErrRoomIDEmpty
	}
	if len(s) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(s), nil
}

// Room keeps users in join order; that order is the display order.
type Room struct {
	ID            RoomID    `json:"id"`
	Users         []*User   `json:"users"`
	VotesRevealed bool      `json:"votesRevealed"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewRoom(id RoomID) *Room {
	return &Room{ID: id, Users: []*User{}, CreatedAt: time.Now()}
}

func (r *Room) UserByName(name string) (*User, bool) {
	for _, u := range r.Users {
		if u.Name == name {
			return u, true
		}
	}
	return nil, false
}

func (r *Room) UserByID(id UserID) (*User, bool) {
	for _, u := range r.Users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (r *Room) AddUser(u *User) { r.Users = append(r.Users, u) }

// RemoveUser drops the user and keeps the order of the rest.
func (r *Room) RemoveUser(id UserID) bool {
	for i, u := range r.Users {
		if u.ID == id {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) ConnectedCount() int {
	n := 0
	for _, u := range r.Users {
		if u.Connected {
			n++
		}
	}
	return n
}

// Snapshot is a deep copy safe to hand to encoders outside the event loop.
func (r *Room) Snapshot() Room {
	out := Room{
		ID:            r.ID,
		Users:         make([]*User, 0, len(r.Users)),
		VotesRevealed: r.VotesRevealed,
		CreatedAt:     r.CreatedAt,
	}
	for _, u := range r.Users {
		cp := *u
		out.Users = append(out.Users, &cp)
	}
	return out
}
