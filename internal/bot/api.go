package bot

import (
	"errors"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

var (
	ErrNotSeated     = errors.New("bot is not seated in this game")
	ErrNothingToDo   = errors.New("bot has no pending decision")
	ErrNoLegalCard   = errors.New("bot has no legal card")
	ErrUnknownLevel  = errors.New("unknown bot level")
	ErrSelfPlayStall = errors.New("self-play did not finish")
)

// Action represents the decision made by the AI: a bid during the auction,
// a card during play.
type Action struct {
	IsBid bool
	Bid   domain.Contract
	Card  domain.Card
}

// View is what a seated player may know when it is asked to act.
type View struct {
	PlayerID  string
	Seat      int
	Team      domain.Team
	PartnerID string
	Opponents []string
	Hand      []domain.Card
	Highest   domain.Contract
	Bids      []domain.Bid
	Trick     []domain.Move
	Score     domain.Score
}

// ViewFor builds the view of playerID, reporting false when not seated.
func ViewFor(state *domain.GameState, playerID string) (View, bool) {
	seat := state.Seat(playerID)
	if seat < 0 {
		return View{}, false
	}
	p := state.Players[seat]
	v := View{
		PlayerID: playerID,
		Seat:     seat,
		Team:     p.Team(),
		Hand:     p.Hand(),
		Highest:  state.HighestContract,
		Bids:     append([]domain.Bid(nil), state.Bids...),
		Trick:    append([]domain.Move(nil), state.CurrentTrick...),
		Score:    state.Score,
	}
	if partner := domain.PartnerSeat(seat); partner < len(state.Players) {
		v.PartnerID = state.Players[partner].ID()
	}
	for _, opp := range []int{domain.NextSeat(seat), domain.NextSeat(domain.PartnerSeat(seat))} {
		if opp < len(state.Players) {
			v.Opponents = append(v.Opponents, state.Players[opp].ID())
		}
	}
	return v, true
}

// Legal lists the cards the rules allow from this view.
func (v View) Legal() []domain.Card {
	return domain.LegalCards(v.Hand, v.Trick, v.Highest, v.PartnerID)
}

// PartnerHolds reports whether the partner made the standing contract.
func (v View) PartnerHolds() bool {
	if v.Highest == domain.ContractPass {
		return false
	}
	for _, b := range v.Bids {
		if b.Contract == v.Highest {
			return b.PlayerID == v.PartnerID
		}
	}
	return false
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	ChooseBid(view View) domain.Contract
	ChooseCard(view View) (domain.Card, error)
	OnEvent(event app.Event)
}
