package bot

import (
	"fmt"
	"math/rand"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// maxDecisions bounds one self-play run so a broken rule cannot loop forever.
const maxDecisions = 10000

// SelfPlayResult summarizes a bot-only game.
type SelfPlayResult struct {
	GameID    string
	Rounds    int
	Restarts  int
	Decisions int
	Score     domain.Score
	Contracts []domain.Contract
}

// RunSelfPlay seats four agents in a fresh game shuffled from seed and plays
// rounds complete rounds. Card accounting is checked after every decision.
func RunSelfPlay(gameID string, seed int64, rounds int, agents [domain.SeatCount]*Agent, opts ...app.Option) (SelfPlayResult, error) {
	opts = append([]app.Option{app.WithRand(rand.New(rand.NewSource(seed))), app.WithTrickPause(0)}, opts...)
	game := app.NewGame(gameID, opts...)
	res := SelfPlayResult{GameID: gameID}

	byID := make(map[string]*Agent, len(agents))
	for i, a := range agents {
		if a == nil {
			return res, fmt.Errorf("seat %d has no agent", i)
		}
		if _, err := game.AddPlayer(domain.NewPlayer(a.ID, domain.TeamForSeat(i), "")); err != nil {
			return res, fmt.Errorf("seat bot %s: %w", a.ID, err)
		}
		byID[a.ID] = a
	}

	notify := func(events []app.Event) {
		for _, ev := range events {
			switch ev.Kind {
			case app.EventRoundRestart:
				res.Restarts++
			case app.EventBiddingFinished:
				if p, ok := ev.Payload.(app.BiddingFinishedPayload); ok {
					res.Contracts = append(res.Contracts, p.HighestContract)
				}
			}
			for _, a := range agents {
				a.OnGameEvent(ev)
			}
		}
	}

	events, err := game.Start()
	if err != nil {
		return res, err
	}
	notify(events)

	state := game.State()
	for res.Decisions < maxDecisions {
		if state.Phase == domain.PhaseScoring {
			res.Rounds++
			res.Score = state.Score
			if res.Rounds >= rounds {
				return res, nil
			}
			events, err := game.NextRound()
			if err != nil {
				return res, err
			}
			notify(events)
			continue
		}

		current := state.CurrentPlayer()
		events, err := byID[current.ID()].Apply(game)
		res.Decisions++
		if err != nil {
			return res, fmt.Errorf("decision %d in round %d: %w", res.Decisions, state.Round, err)
		}
		notify(events)

		if got := state.CardsAccounted(); got != domain.DeckSize {
			return res, fmt.Errorf("card accounting broke after decision %d: %d cards", res.Decisions, got)
		}
	}
	return res, ErrSelfPlayStall
}

// NewTable builds four agents of one level with generated identities.
func NewTable(level BotLevel) ([domain.SeatCount]*Agent, error) {
	var agents [domain.SeatCount]*Agent
	for i := range agents {
		a, err := NewAgent(BotIdentity{
			UserID:      fmt.Sprintf("%sseat-%d", BotIDPrefix, i),
			DisplayName: fmt.Sprintf("AI Player %d", i+1),
		}, level)
		if err != nil {
			return agents, err
		}
		agents[i] = a
	}
	return agents, nil
}
