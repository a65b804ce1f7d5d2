package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits.
type Suit int

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

var suitNames = [...]string{"clubs", "diamonds", "hearts", "spades"}

// Suits lists every suit in deck order.
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

func (s Suit) Valid() bool {
	return s >= SuitClubs && s <= SuitSpades
}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("suit(%d)", int(s))
	}
	return suitNames[s]
}

// MarshalText encodes the suit by name.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText decodes a suit name.
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit accepts the suit name in any case.
func ParseSuit(name string) (Suit, error) {
	for i, n := range suitNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

// Rank is a face value. The numeric order is the face order; playing strength
// depends on the contract and lives in the order tables below.
type Rank int

const (
	Rank7 Rank = iota
	Rank8
	Rank9
	Rank10
	RankJack
	RankQueen
	RankKing
	RankAce
)

var rankNames = [...]string{"7", "8", "9", "10", "J", "Q", "K", "A"}

// Ranks lists every rank in face order.
var Ranks = []Rank{Rank7, Rank8, Rank9, Rank10, RankJack, RankQueen, RankKing, RankAce}

func (r Rank) Valid() bool {
	return r >= Rank7 && r <= RankAce
}

func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rank(%d)", int(r))
	}
	return rankNames[r]
}

// MarshalText encodes the rank as its face label.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(rankNames[r]), nil
}

// UnmarshalText decodes a face label.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank accepts "7".."10" and "J", "Q", "K", "A" in any case.
func ParseRank(label string) (Rank, error) {
	for i, n := range rankNames {
		if strings.EqualFold(n, strings.TrimSpace(label)) {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", label)
}

// Card is a single playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

var (
	trumpOrder = [...]int{Rank7: 0, Rank8: 1, RankQueen: 2, RankKing: 3, Rank10: 4, RankAce: 5, Rank9: 6, RankJack: 7}
	plainOrder = [...]int{Rank7: 0, Rank8: 1, Rank9: 2, RankJack: 3, RankQueen: 4, RankKing: 5, Rank10: 6, RankAce: 7}

	trumpPoints = [...]int{Rank7: 0, Rank8: 0, RankQueen: 3, RankKing: 4, Rank10: 10, RankAce: 11, Rank9: 14, RankJack: 20}
	plainPoints = [...]int{Rank7: 0, Rank8: 0, Rank9: 0, RankJack: 2, RankQueen: 3, RankKing: 4, Rank10: 10, RankAce: 11}
)
