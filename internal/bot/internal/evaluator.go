package internal

import "github.com/jimmmmothy/Belote-Enterprise/internal/domain"

// BidWeights tunes how a hand is valued for one contract.
type BidWeights struct {
	PointWeight  float64 // per card point the hand would hold under the contract
	TrumpWeight  float64 // per trump card held
	SideAceBonus float64 // per ace outside the trumps
	JackBonus    float64 // holding the jack of a trump suit
}

// EvaluateContract scores a hand for contract. Higher is stronger; the bot
// compares it against a per-contract threshold.
func EvaluateContract(hand []domain.Card, contract domain.Contract, w BidWeights) float64 {
	if contract == domain.ContractPass {
		return 0
	}

	score := 0.0
	for _, c := range hand {
		score += float64(domain.CardPoints(c, contract)) * w.PointWeight
		if contract.IsTrump(c) {
			score += w.TrumpWeight
			if c.Rank == domain.RankJack {
				score += w.JackBonus
			}
		} else if c.Rank == domain.RankAce {
			score += w.SideAceBonus
		}
	}
	return score
}

// BestContract returns the strongest contract above highest whose score
// clears its threshold, or Pass.
func BestContract(hand []domain.Card, highest domain.Contract, w BidWeights, thresholds map[domain.Contract]float64) domain.Contract {
	best := domain.ContractPass
	bestMargin := 0.0
	for _, c := range domain.AvailableContracts(highest) {
		limit, ok := thresholds[c]
		if !ok {
			continue
		}
		margin := EvaluateContract(hand, c, w) - limit
		if margin >= 0 && (best == domain.ContractPass || margin > bestMargin) {
			best = c
			bestMargin = margin
		}
	}
	return best
}
