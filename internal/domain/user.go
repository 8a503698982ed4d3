// Package domain contains entity without transport, just state and its local rules
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrInvalidRole     = errors.New("invalid role")
)

type UserID string

type Role string

const (
	RoleVoter     Role = "voter"
	RoleSpectator Role = "spectator"
)

// ParseRole accepts the two wire roles. Empty means voter.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleVoter:
		return RoleVoter, nil
	case RoleSpectator:
		return RoleSpectator, nil
	}
	return "", ErrInvalidRole
}

type User struct {
	ID        UserID `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Vote      Vote   `json:"vote,omitempty"`
	HasVoted  bool   `json:"hasVoted"`
	Connected bool   `json:"connected"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in the app layer.
func NewUser(name string, role Role) (*User, error) {
	if err := ValidateUsername(name); err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Name: name, Role: role, Connected: true}, nil
}

func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func (u *User) IsVoter() bool { return u.Role == RoleVoter }

func (u *User) SetVote(v Vote) {
	u.Vote = v
	u.HasVoted = v != NoVote
}

func (u *User) ClearVote() { u.SetVote(NoVote) }
