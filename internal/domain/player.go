package domain

import "fmt"

// Team is one of the two partnerships.
type Team int

const (
	Team0 Team = iota
	Team1
)

func (t Team) Valid() bool {
	return t == Team0 || t == Team1
}

func (t Team) String() string {
	return fmt.Sprintf("team %d", int(t))
}

// TeamForSeat partners seats 0/2 and 1/3.
func TeamForSeat(seat int) Team {
	return Team(seat % 2)
}

// Player binds a stable identity and team to a hand. The transport ref is the
// only field that changes after construction.
type Player struct {
	id           string
	team         Team
	transportRef string
	hand         []Card
}

// NewPlayer creates a player with an empty hand.
func NewPlayer(id string, team Team, transportRef string) *Player {
	return &Player{id: id, team: team, transportRef: transportRef}
}

func (p *Player) ID() string { return p.id }
func (p *Player) Team() Team { return p.team }

func (p *Player) TransportRef() string {
	return p.transportRef
}

// Rebind points the player at a new connection handle.
func (p *Player) Rebind(transportRef string) {
	p.transportRef = transportRef
}

// Hand returns a copy of the cards held.
func (p *Player) Hand() []Card {
	return append([]Card(nil), p.hand...)
}

func (p *Player) HandSize() int {
	return len(p.hand)
}

// AddCards appends cards to the hand.
func (p *Player) AddCards(cards []Card) {
	p.hand = append(p.hand, cards...)
}

// RemoveCard removes the first matching card and reports whether one was found.
func (p *Player) RemoveCard(card Card) bool {
	for i, c := range p.hand {
		if c == card {
			p.hand = append(p.hand[:i], p.hand[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) HasCard(card Card) bool {
	for _, c := range p.hand {
		if c == card {
			return true
		}
	}
	return false
}

func (p *Player) HasSuit(suit Suit) bool {
	return hasSuit(p.hand, suit)
}

// ClearHand drops every card, used before a redeal.
func (p *Player) ClearHand() {
	p.hand = nil
}

func hasSuit(cards []Card, suit Suit) bool {
	for _, c := range cards {
		if c.Suit == suit {
			return true
		}
	}
	return false
}
