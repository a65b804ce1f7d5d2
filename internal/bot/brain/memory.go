package brain

import (
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// CardStatus represents what the bot knows about a specific card.
type CardStatus int

const (
	StatusUnknown CardStatus = iota // We don't know who has it
	StatusMine                      // In the bot's hand
	StatusPlayed                    // Already taken in a trick or on the table
)

// GameMemory stores the bot's private view of one round.
type GameMemory struct {
	// DeckStatus tracks all 32 cards. Index = Suit*8 + Rank.
	DeckStatus [domain.DeckSize]CardStatus
	// Voids records suits a player failed to follow, by player id.
	Voids map[string]map[domain.Suit]bool
	// Lead is the suit of the trick in progress.
	Lead    domain.Suit
	hasLead bool
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{
		Voids: make(map[string]map[domain.Suit]bool),
	}
}

// Reset clears the memory for a new deal.
func (m *GameMemory) Reset() {
	for i := range m.DeckStatus {
		m.DeckStatus[i] = StatusUnknown
	}
	m.Voids = make(map[string]map[domain.Suit]bool)
	m.hasLead = false
}

// UpdateHand marks hand as Mine; cards that left the hand revert to Unknown
// unless they were seen played.
func (m *GameMemory) UpdateHand(hand []domain.Card) {
	for i, status := range m.DeckStatus {
		if status == StatusMine {
			m.DeckStatus[i] = StatusUnknown
		}
	}
	for _, c := range hand {
		if m.DeckStatus[cardToIndex(c)] != StatusPlayed {
			m.DeckStatus[cardToIndex(c)] = StatusMine
		}
	}
}

// RecordPlay logs a card on the table. A player not following the lead is
// void in it for the rest of the round.
func (m *GameMemory) RecordPlay(playerID string, c domain.Card) {
	if !c.Valid() {
		return
	}
	m.DeckStatus[cardToIndex(c)] = StatusPlayed
	if !m.hasLead {
		m.Lead = c.Suit
		m.hasLead = true
		return
	}
	if c.Suit != m.Lead {
		if m.Voids[playerID] == nil {
			m.Voids[playerID] = make(map[domain.Suit]bool)
		}
		m.Voids[playerID][m.Lead] = true
	}
}

// EndTrick clears the lead once a trick is gathered.
func (m *GameMemory) EndTrick() {
	m.hasLead = false
}

func (m *GameMemory) IsVoid(playerID string, suit domain.Suit) bool {
	return m.Voids[playerID][suit]
}

// IsMaster reports whether no card able to beat c in its own suit is still
// outstanding.
func (m *GameMemory) IsMaster(c domain.Card, contract domain.Contract) bool {
	for _, r := range domain.Ranks {
		other := domain.Card{Suit: c.Suit, Rank: r}
		if other == c || !domain.Beats(other, c, contract) {
			continue
		}
		if m.DeckStatus[cardToIndex(other)] == StatusUnknown {
			return false
		}
	}
	return true
}

// Outstanding counts unseen cards of suit.
func (m *GameMemory) Outstanding(suit domain.Suit) int {
	n := 0
	for _, r := range domain.Ranks {
		if m.DeckStatus[cardToIndex(domain.Card{Suit: suit, Rank: r})] == StatusUnknown {
			n++
		}
	}
	return n
}

// IsPlayed returns true if the card is already out of the game.
func (m *GameMemory) IsPlayed(c domain.Card) bool {
	return m.DeckStatus[cardToIndex(c)] == StatusPlayed
}

func cardToIndex(c domain.Card) int {
	return int(c.Suit)*len(domain.Ranks) + int(c.Rank)
}
