package domain

// CardValue returns the strength of a card within its suit. Trump-ranked cards
// use the Belote trump order, everything else the plain order.
func CardValue(card Card, contract Contract) int {
	if contract.IsTrump(card) {
		return trumpOrder[card.Rank]
	}
	return plainOrder[card.Rank]
}

// CardPoints returns the score of a single card under the contract.
func CardPoints(card Card, contract Contract) int {
	if contract.IsTrump(card) {
		return trumpPoints[card.Rank]
	}
	return plainPoints[card.Rank]
}

// Beats reports whether challenger outranks holder. Same-suit cards compare by
// value; under a suit contract a trump beats any non-trump. Cards of different
// suits never beat each other otherwise.
func Beats(challenger, holder Card, contract Contract) bool {
	if challenger.Suit == holder.Suit {
		return CardValue(challenger, contract) > CardValue(holder, contract)
	}
	trump, ok := contract.TrumpSuit()
	return ok && challenger.Suit == trump
}

// TrickWinner returns the move currently winning the trick.
func TrickWinner(trick []Move, contract Contract) (Move, bool) {
	if len(trick) == 0 {
		return Move{}, false
	}
	winner := trick[0]
	for _, m := range trick[1:] {
		if Beats(m.Card(), winner.Card(), contract) {
			winner = m
		}
	}
	return winner, true
}

// TrickPoints sums the card points of a trick.
func TrickPoints(trick []Move, contract Contract) int {
	total := 0
	for _, m := range trick {
		total += CardPoints(m.Card(), contract)
	}
	return total
}

// IsLegalPlay checks a card from hand against the trick so far. partnerID is
// the id of the player seated across from the one playing.
func IsLegalPlay(hand []Card, trick []Move, contract Contract, partnerID string, card Card) bool {
	if len(trick) == 0 {
		return true
	}

	lead := trick[0].Suit
	winner, _ := TrickWinner(trick, contract)
	winning := winner.Card()
	partnerWinning := winner.PlayerID == partnerID

	if hasSuit(hand, lead) {
		if card.Suit != lead {
			return false
		}
		if !partnerWinning && canRaiseInSuit(hand, winning, lead, contract) {
			return Beats(card, winning, contract)
		}
		return true
	}

	trump, ok := contract.TrumpSuit()
	if !ok || !hasSuit(hand, trump) {
		return true
	}

	var trumpsOnTable []Move
	for _, m := range trick {
		if m.Suit == trump {
			trumpsOnTable = append(trumpsOnTable, m)
		}
	}
	if len(trumpsOnTable) == 0 {
		return card.Suit == trump
	}

	highest, _ := TrickWinner(trumpsOnTable, contract)
	if !partnerWinning && canRaiseInSuit(hand, highest.Card(), trump, contract) {
		return card.Suit == trump && Beats(card, highest.Card(), contract)
	}
	return card.Suit == trump
}

// LegalCards filters a hand down to the cards IsLegalPlay accepts. The result
// is never empty for a non-empty hand.
func LegalCards(hand []Card, trick []Move, contract Contract, partnerID string) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if IsLegalPlay(hand, trick, contract, partnerID, c) {
			out = append(out, c)
		}
	}
	return out
}

// canRaiseInSuit reports whether hand holds a card of suit that beats winning.
// A winning card of another suit cannot be raised from suit.
func canRaiseInSuit(hand []Card, winning Card, suit Suit, contract Contract) bool {
	if winning.Suit != suit {
		return false
	}
	for _, c := range hand {
		if c.Suit == suit && Beats(c, winning, contract) {
			return true
		}
	}
	return false
}
