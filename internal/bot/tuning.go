package bot

import (
	botinternal "github.com/jimmmmothy/Belote-Enterprise/internal/bot/internal"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// BidTuning holds the weights and per-contract thresholds used in the auction.
type BidTuning struct {
	Weights    botinternal.BidWeights
	Thresholds map[domain.Contract]float64
}

// DefaultTuning is calibrated on the five cards held during the auction.
var DefaultTuning = BidTuning{
	Weights: botinternal.BidWeights{
		PointWeight:  1.0,
		TrumpWeight:  4.0,
		SideAceBonus: 5.0,
		JackBonus:    6.0,
	},
	Thresholds: map[domain.Contract]float64{
		domain.ContractClubs:     52,
		domain.ContractDiamonds:  52,
		domain.ContractHearts:    52,
		domain.ContractSpades:    52,
		domain.ContractNoTrumps:  48,
		domain.ContractAllTrumps: 95,
	},
}
