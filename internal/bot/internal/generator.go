package internal

import (
	"sort"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// Winners returns the cards of legal that would take the trick as it stands.
func Winners(legal []domain.Card, trick []domain.Move, contract domain.Contract) []domain.Card {
	if len(trick) == 0 {
		return nil
	}
	current, ok := domain.TrickWinner(trick, contract)
	if !ok {
		return nil
	}
	var out []domain.Card
	for _, c := range legal {
		if domain.Beats(c, current.Card(), contract) {
			out = append(out, c)
		}
	}
	return out
}

// SortCheapest orders cards by points, then by trick-taking value, lowest
// first. Trumps sort after plain cards of equal points.
func SortCheapest(cards []domain.Card, contract domain.Contract) []domain.Card {
	out := append([]domain.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := domain.CardPoints(out[i], contract), domain.CardPoints(out[j], contract)
		if pi != pj {
			return pi < pj
		}
		ti, tj := contract.IsTrump(out[i]), contract.IsTrump(out[j])
		if ti != tj {
			return !ti
		}
		return domain.CardValue(out[i], contract) < domain.CardValue(out[j], contract)
	})
	return out
}

// Cheapest returns the least valuable card, or false for an empty slice.
func Cheapest(cards []domain.Card, contract domain.Contract) (domain.Card, bool) {
	if len(cards) == 0 {
		return domain.Card{}, false
	}
	return SortCheapest(cards, contract)[0], true
}

// Richest returns the card carrying the most points, preferring plain cards.
func Richest(cards []domain.Card, contract domain.Contract) (domain.Card, bool) {
	if len(cards) == 0 {
		return domain.Card{}, false
	}
	best := cards[0]
	for _, c := range cards[1:] {
		pc, pb := domain.CardPoints(c, contract), domain.CardPoints(best, contract)
		if pc > pb || (pc == pb && contract.IsTrump(best) && !contract.IsTrump(c)) {
			best = c
		}
	}
	return best, true
}
