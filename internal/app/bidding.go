package app

import (
	"fmt"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// startBidding clears the auction and asks seat to bid.
func (g *Game) startBidding(out *outbox, seat int) {
	s := g.state
	s.Phase = domain.PhaseBidding
	s.Bids = nil
	s.HighestContract = domain.ContractPass
	s.CurrentPlayerIndex = seat
	g.askBid(out, s.Players[seat])
}

func (g *Game) askBid(out *outbox, p *domain.Player) {
	out.to(p, EventBiddingTurn, BiddingTurnPayload{
		PlayerID:  p.ID(),
		Available: domain.AvailableContracts(g.state.HighestContract),
	})
}

func (g *Game) handleBid(out *outbox, playerID string, contract domain.Contract) error {
	s := g.state
	current := s.CurrentPlayer()
	if current == nil || current.ID() != playerID {
		return ErrNotYourTurn
	}
	if !domain.CanBid(s.HighestContract, contract) {
		g.askBid(out, current)
		return fmt.Errorf("%w: %s is not above %s", ErrInvalidMove, contract, s.HighestContract)
	}

	s.Bids = append(s.Bids, domain.Bid{PlayerID: playerID, Contract: contract})
	if contract > s.HighestContract {
		s.HighestContract = contract
	}
	s.CurrentPlayerIndex = domain.NextSeat(s.CurrentPlayerIndex)
	out.broadcast(EventBidPlaced, BidPlacedPayload{PlayerID: playerID, Contract: contract})

	if !auctionSettled(s) {
		g.askBid(out, s.CurrentPlayer())
		return nil
	}
	if s.HighestContract == domain.ContractPass {
		g.redealAfterAllPass(out)
		return nil
	}
	g.finishBidding(out)
	return nil
}

// auctionSettled reports whether every seat except the holder of the highest
// contract stands on Pass. A pass stands when it answered the highest
// contract or was made before any contract existed. A seat that passed on a
// contract that was later raised is asked again.
func auctionSettled(s *domain.GameState) bool {
	leader, highestAt := highestBid(s)
	firstAt := firstContractAt(s)
	for _, p := range s.Players {
		if p.ID() == leader {
			continue
		}
		c, at := s.LatestBid(p.ID())
		if at < 0 || c != domain.ContractPass {
			return false
		}
		if firstAt >= 0 && at > firstAt && at < highestAt {
			return false
		}
	}
	return true
}

// highestBid returns who made the highest contract and where it sits in
// Bids, or ("", -1) while it is Pass.
func highestBid(s *domain.GameState) (string, int) {
	if s.HighestContract == domain.ContractPass {
		return "", -1
	}
	for i, b := range s.Bids {
		if b.Contract == s.HighestContract {
			return b.PlayerID, i
		}
	}
	return "", -1
}

func highestBidder(s *domain.GameState) string {
	id, _ := highestBid(s)
	return id
}

func firstContractAt(s *domain.GameState) int {
	for i, b := range s.Bids {
		if b.Contract != domain.ContractPass {
			return i
		}
	}
	return -1
}

func (g *Game) redealAfterAllPass(out *outbox) {
	out.broadcast(EventRoundRestart, RoundRestartPayload{Reason: RestartReasonAllPassed})
	g.dealFirstBatch(out)
	g.startBidding(out, g.openingSeat)
}

func (g *Game) finishBidding(out *outbox) {
	s := g.state
	out.broadcast(EventBiddingFinished, BiddingFinishedPayload{
		HighestContract: s.HighestContract,
		BidderID:        highestBidder(s),
	})

	s.Dealer.SecondDeal(s.Players)
	g.sendCards(out)

	s.Phase = domain.PhasePlaying
	s.CurrentTrick = nil
	s.CurrentPlayerIndex = g.openingSeat
	lead := s.CurrentPlayer()
	out.to(lead, EventPlayingTurn, PlayingTurnPayload{PlayerID: lead.ID()})
}
