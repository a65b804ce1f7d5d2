package domain

import (
	"math/rand"
	"time"
)

const (
	// SeatCount is the fixed table size.
	SeatCount = 4
	// DeckSize is the number of cards in a Belote deck.
	DeckSize = 32
	// FirstDealSize is dealt to every seat before bidding.
	FirstDealSize = 5
	// SecondDealSize completes every hand once a contract is settled.
	SecondDealSize = 3
	// HandSize is the hand length after both deals.
	HandSize = FirstDealSize + SecondDealSize
	// TricksPerRound is the number of tricks in one hand.
	TricksPerRound = HandSize
)

// NewDeck returns the 32 Belote cards in suit-major order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Dealer owns the card pool for one game. Both deals of a round consume the
// same shuffled pool; dealt tracks how far into the pool the deals reached.
type Dealer struct {
	pool  []Card
	dealt int
	rng   *rand.Rand
}

// NewDealer constructs a Dealer with provided rng or a time-seeded default.
func NewDealer(rng *rand.Rand) *Dealer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Dealer{pool: NewDeck(), rng: rng}
}

// Shuffle permutes the pool in place (Fisher–Yates) and forgets prior deals.
func (d *Dealer) Shuffle() {
	for i := len(d.pool) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.pool[i], d.pool[j] = d.pool[j], d.pool[i]
	}
	d.dealt = 0
}

// FirstDeal hands pool[5i:5i+5] to seat i.
func (d *Dealer) FirstDeal(players []*Player) {
	for i, p := range players {
		start := i * FirstDealSize
		p.AddCards(d.pool[start : start+FirstDealSize])
	}
	d.dealt = len(players) * FirstDealSize
}

// SecondDeal hands pool[20+3i:20+3i+3] to seat i.
func (d *Dealer) SecondDeal(players []*Player) {
	base := SeatCount * FirstDealSize
	for i, p := range players {
		start := base + i*SecondDealSize
		p.AddCards(d.pool[start : start+SecondDealSize])
	}
	d.dealt = base + len(players)*SecondDealSize
}

// Pool returns a copy of the current pool order.
func (d *Dealer) Pool() []Card {
	return append([]Card(nil), d.pool...)
}

// Undealt is the number of pool cards not yet handed out this round.
func (d *Dealer) Undealt() int {
	return len(d.pool) - d.dealt
}
