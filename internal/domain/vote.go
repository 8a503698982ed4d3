package domain

import "errors"

var ErrInvalidVote = errors.New("invalid vote")

// Vote is a card value. The zero value means no vote cast.
type Vote string

const NoVote Vote = ""

// Deck is the closed set of card values, in display order.
var Deck = []Vote{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "coffee", "question"}

var deckIndex = func() map[Vote]struct{} {
	m := make(map[Vote]struct{}, len(Deck))
	for _, v := range Deck {
		m[v] = struct{}{}
	}
	return m
}()

func ParseVote(s string) (Vote, error) {
	v := Vote(s)
	if _, ok := deckIndex[v]; !ok {
		return NoVote, ErrInvalidVote
	}
	return v, nil
}
