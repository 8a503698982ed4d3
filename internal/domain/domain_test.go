package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVote(t *testing.T) {
	for _, v := range Deck {
		got, err := ParseVote(string(v))
		require.NoError(t, err, "card %q", v)
		assert.Equal(t, v, got)
	}

	for _, bad := range []string{"", "4", "100", "Coffee", "?"} {
		_, err := ParseVote(bad)
		assert.ErrorIs(t, err, ErrInvalidVote, "card %q", bad)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{"voter", RoleVoter, nil},
		{"spectator", RoleSpectator, nil},
		{"", RoleVoter, nil},
		{"admin", "", ErrInvalidRole},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice", RoleVoter)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.LessOrEqual(t, len(u.ID), MaxUserIDLen)
	assert.True(t, u.Connected)
	assert.Equal(t, NoVote, u.Vote)
	assert.False(t, u.HasVoted)

	_, err = NewUser("", RoleVoter)
	assert.ErrorIs(t, err, ErrUsernameEmpty)

	_, err = NewUser(strings.Repeat("x", MaxUsernameLen+1), RoleVoter)
	assert.ErrorIs(t, err, ErrUsernameTooLong)
}

func TestUserSetVote(t *testing.T) {
	u := &User{Role: RoleVoter}
	u.SetVote("5")
	assert.Equal(t, Vote("5"), u.Vote)
	assert.True(t, u.HasVoted)

	u.ClearVote()
	assert.Equal(t, NoVote, u.Vote)
	assert.False(t, u.HasVoted)
}

func TestRoomOrderAndRemoval(t *testing.T) {
	r := NewRoom("1234")
	a := &User{ID: "a", Name: "A", Connected: true}
	b := &User{ID: "b", Name: "B", Connected: true}
	c := &User{ID: "c", Name: "C"}
	r.AddUser(a)
	r.AddUser(b)
	r.AddUser(c)

	assert.Equal(t, 2, r.ConnectedCount())

	got, ok := r.UserByName("B")
	require.True(t, ok)
	assert.Same(t, b, got)

	require.True(t, r.RemoveUser("b"))
	assert.False(t, r.RemoveUser("b"))
	assert.Equal(t, []*User{a, c}, r.Users)

	_, ok = r.UserByID("b")
	assert.False(t, ok)
}

func TestRoomSnapshotIsDetached(t *testing.T) {
	r := NewRoom("1234")
	r.AddUser(&User{ID: "a", Name: "A", Role: RoleVoter, Connected: true})

	snap := r.Snapshot()
	r.Users[0].SetVote("8")
	r.VotesRevealed = true

	assert.Equal(t, NoVote, snap.Users[0].Vote)
	assert.False(t, snap.VotesRevealed)
	assert.Equal(t, r.CreatedAt, snap.CreatedAt)
}

func TestParseRoomID(t *testing.T) {
	id, err := ParseRoomID("1234")
	require.NoError(t, err)
	assert.Equal(t, RoomID("1234"), id)

	_, err = ParseRoomID("")
	assert.ErrorIs(t, err, ErrRoomIDEmpty)

	_, err = ParseRoomID(strings.Repeat("9", MaxRoomIDLen+1))
	assert.ErrorIs(t, err, ErrRoomIDTooLong)
}
