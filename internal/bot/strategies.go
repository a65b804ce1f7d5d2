package bot

import (
	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/bot/brain"
	"github.com/jimmmmothy/Belote-Enterprise/internal/bot/internal"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// StandardBot bids on hand strength and plays with a memory of fallen cards.
type StandardBot struct {
	Tuning BidTuning
	Memory *brain.GameMemory
}

func NewStandardBot(tuning BidTuning) *StandardBot {
	return &StandardBot{Tuning: tuning, Memory: brain.NewMemory()}
}

func (b *StandardBot) ChooseBid(view View) domain.Contract {
	// Never outbid the partner.
	if view.PartnerHolds() {
		return domain.ContractPass
	}
	return internal.BestContract(view.Hand, view.Highest, b.Tuning.Weights, b.Tuning.Thresholds)
}

func (b *StandardBot) ChooseCard(view View) (domain.Card, error) {
	legal := view.Legal()
	if len(legal) == 0 {
		return domain.Card{}, ErrNoLegalCard
	}
	if len(legal) == 1 {
		return legal[0], nil
	}
	b.Memory.UpdateHand(view.Hand)
	contract := view.Highest

	if len(view.Trick) == 0 {
		return b.lead(legal, view.Opponents, contract), nil
	}

	winner, _ := domain.TrickWinner(view.Trick, contract)
	if winner.PlayerID == view.PartnerID && b.partnerHolds(winner.Card(), view, contract) {
		card, _ := internal.Richest(legal, contract)
		return card, nil
	}

	winners := internal.Winners(legal, view.Trick, contract)
	if len(winners) == 0 {
		card, _ := internal.Cheapest(legal, contract)
		return card, nil
	}
	// Last to play takes it as cheaply as possible; otherwise prefer a card
	// nobody can top.
	if len(view.Trick) < domain.SeatCount-1 {
		for _, c := range internal.SortCheapest(winners, contract) {
			if b.Memory.IsMaster(c, contract) {
				return c, nil
			}
		}
	}
	card, _ := internal.Cheapest(winners, contract)
	return card, nil
}

// lead plays a master card when there is one, else the cheapest plain card.
// Suits an opponent can ruff are led only when nothing else is left.
func (b *StandardBot) lead(legal []domain.Card, opponents []string, contract domain.Contract) domain.Card {
	var safe []domain.Card
	for _, c := range legal {
		if !b.ruffable(c.Suit, opponents, contract) {
			safe = append(safe, c)
		}
	}
	if len(safe) > 0 {
		legal = safe
	}

	var masters []domain.Card
	for _, c := range legal {
		if b.Memory.IsMaster(c, contract) {
			masters = append(masters, c)
		}
	}
	if card, ok := internal.Richest(masters, contract); ok {
		return card
	}

	var plain []domain.Card
	for _, c := range legal {
		if !contract.IsTrump(c) {
			plain = append(plain, c)
		}
	}
	if card, ok := internal.Cheapest(plain, contract); ok {
		return card
	}
	card, _ := internal.Cheapest(legal, contract)
	return card
}

// partnerHolds reports whether the partner's winning card is safe from the
// players still to act.
func (b *StandardBot) partnerHolds(card domain.Card, view View, contract domain.Contract) bool {
	if len(view.Trick) == domain.SeatCount-1 {
		return true
	}
	if b.Memory.IsMaster(card, contract) {
		return true
	}
	// Opponents out of the led suit can only take it by trumping.
	if card.Suit != view.Trick[0].Suit {
		return false
	}
	for _, opp := range view.Opponents {
		if played(view.Trick, opp) {
			continue
		}
		if !b.Memory.IsVoid(opp, card.Suit) || b.canRuff(opp, card.Suit, contract) {
			return false
		}
	}
	return true
}

// ruffable reports whether an opponent is out of suit and may still trump it.
func (b *StandardBot) ruffable(suit domain.Suit, opponents []string, contract domain.Contract) bool {
	for _, opp := range opponents {
		if b.Memory.IsVoid(opp, suit) && b.canRuff(opp, suit, contract) {
			return true
		}
	}
	return false
}

func (b *StandardBot) canRuff(opp string, suit domain.Suit, contract domain.Contract) bool {
	trump, ok := contract.TrumpSuit()
	if !ok || trump == suit || b.Memory.IsVoid(opp, trump) {
		return false
	}
	return b.Memory.Outstanding(trump) > 0
}

func played(trick []domain.Move, playerID string) bool {
	for _, m := range trick {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (b *StandardBot) OnEvent(event app.Event) {
	switch event.Kind {
	case app.EventMovePlayed:
		if p, ok := event.Payload.(app.MovePlayedPayload); ok {
			b.Memory.RecordPlay(p.PlayerID, domain.Card{Suit: p.Suit, Rank: p.Rank})
		}
	case app.EventTrickFinished:
		b.Memory.EndTrick()
	case app.EventRoundRestart, app.EventRoundFinished:
		b.Memory.Reset()
	}
}
