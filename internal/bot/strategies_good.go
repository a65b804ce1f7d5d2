package bot

import (
	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/bot/internal"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// GoodBot takes a suit only when it holds that suit's jack with another
// trump, and always plays its cheapest legal card.
type GoodBot struct{}

func (b *GoodBot) ChooseBid(view View) domain.Contract {
	for _, c := range domain.AvailableContracts(view.Highest) {
		suit, ok := c.TrumpSuit()
		if !ok {
			continue
		}
		jack, trumps := false, 0
		for _, card := range view.Hand {
			if card.Suit != suit {
				continue
			}
			trumps++
			if card.Rank == domain.RankJack {
				jack = true
			}
		}
		if jack && trumps >= 2 {
			return c
		}
	}
	return domain.ContractPass
}

func (b *GoodBot) ChooseCard(view View) (domain.Card, error) {
	card, ok := internal.Cheapest(view.Legal(), view.Highest)
	if !ok {
		return domain.Card{}, ErrNoLegalCard
	}
	return card, nil
}

func (b *GoodBot) OnEvent(app.Event) {}
