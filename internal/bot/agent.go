package bot

import (
	"fmt"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent pairs an identity with a brain of the given level.
func NewAgent(identity BotIdentity, level BotLevel) (*Agent, error) {
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: identity.UserID, Name: identity.DisplayName, Strategy: brain}, nil
}

// Act asks the agent for its decision in the current phase. The caller checks
// that it is the agent's turn.
func (a *Agent) Act(state *domain.GameState) (Action, error) {
	view, ok := ViewFor(state, a.ID)
	if !ok {
		return Action{}, ErrNotSeated
	}

	switch state.Phase {
	case domain.PhaseBidding:
		return Action{IsBid: true, Bid: a.Strategy.ChooseBid(view)}, nil
	case domain.PhasePlaying:
		card, err := a.Strategy.ChooseCard(view)
		if err != nil {
			return Action{}, fmt.Errorf("bot %s: %w", a.ID, err)
		}
		return Action{Card: card}, nil
	default:
		return Action{}, ErrNothingToDo
	}
}

// Apply feeds the agent's decision into game and returns the emitted events.
func (a *Agent) Apply(game *app.Game) ([]app.Event, error) {
	action, err := a.Act(game.State())
	if err != nil {
		return nil, err
	}
	if action.IsBid {
		return game.HandleBidInput(a.ID, action.Bid)
	}
	return game.HandleMoveInput(domain.Move{PlayerID: a.ID, Suit: action.Card.Suit, Rank: action.Card.Rank})
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event app.Event) {
	a.Strategy.OnEvent(event)
}
