package app

import (
	"fmt"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

func (g *Game) handleMove(out *outbox, move domain.Move) error {
	s := g.state
	seat := s.Seat(move.PlayerID)
	if seat < 0 || seat != s.CurrentPlayerIndex {
		return ErrNotYourTurn
	}
	if s.HasPlayedInTrick(move.PlayerID) {
		return ErrAlreadyPlayed
	}

	p := s.Players[seat]
	card := move.Card()
	partner := s.Players[domain.PartnerSeat(seat)]
	if !card.Valid() || !p.HasCard(card) ||
		!domain.IsLegalPlay(p.Hand(), s.CurrentTrick, s.HighestContract, partner.ID(), card) {
		out.to(p, EventPlayingTurn, PlayingTurnPayload{PlayerID: p.ID()})
		return fmt.Errorf("%w: %s", ErrInvalidMove, card)
	}

	p.RemoveCard(card)
	s.CurrentTrick = append(s.CurrentTrick, move)
	out.broadcast(EventMovePlayed, MovePlayedPayload{PlayerID: move.PlayerID, Suit: move.Suit, Rank: move.Rank})

	if len(s.CurrentTrick) < domain.SeatCount {
		s.CurrentPlayerIndex = domain.NextSeat(seat)
		next := s.CurrentPlayer()
		out.to(next, EventPlayingTurn, PlayingTurnPayload{PlayerID: next.ID()})
		return nil
	}
	return g.completeTrick(out)
}

// completeTrick scores the full trick and hands the lead to its winner.
func (g *Game) completeTrick(out *outbox) error {
	s := g.state
	contract := s.HighestContract

	winner, ok := domain.TrickWinner(s.CurrentTrick, contract)
	winnerSeat := s.Seat(winner.PlayerID)
	if !ok || winnerSeat < 0 {
		s.Phase = domain.PhaseScoring
		return ErrWinnerResolution
	}
	wp := s.Players[winnerSeat]
	points := domain.TrickPoints(s.CurrentTrick, contract)
	if !s.Score.Add(wp.Team(), points) {
		s.Phase = domain.PhaseScoring
		return fmt.Errorf("%w: %s has no valid team", ErrWinnerResolution, wp.ID())
	}

	s.Tricks = append(s.Tricks, domain.Trick{Moves: s.CurrentTrick, WinnerID: wp.ID(), Points: points})
	s.CurrentPlayerIndex = winnerSeat
	s.CurrentTrick = nil
	out.broadcast(EventTrickFinished, TrickFinishedPayload{WinnerID: wp.ID(), Points: points, Score: s.Score})

	if s.HandsEmpty() {
		g.finishRound(out)
		return nil
	}
	out.toAfter(wp, g.trickPause, EventPlayingTurn, PlayingTurnPayload{PlayerID: wp.ID()})
	return nil
}

func (g *Game) finishRound(out *outbox) {
	s := g.state
	s.Phase = domain.PhaseScoring
	bonus := g.scorer.ScoreRound(s)
	s.Score.Team0 += bonus.Team0
	s.Score.Team1 += bonus.Team1
	out.broadcast(EventRoundFinished, RoundFinishedPayload{Round: s.Round, Contract: s.HighestContract, Score: s.Score})
}
