package app

import "github.com/jimmmmothy/Belote-Enterprise/internal/domain"

// RoundScorer adds end-of-round points on top of the trick points already
// credited. It runs once per round, when the last trick is taken.
type RoundScorer interface {
	ScoreRound(state *domain.GameState) domain.Score
}

// NoBonus leaves the trick points as the round result.
type NoBonus struct{}

func (NoBonus) ScoreRound(*domain.GameState) domain.Score { return domain.Score{} }

// LastTrickBonus awards a fixed bonus to the team that took the last trick.
type LastTrickBonus struct {
	Points int
}

func (b LastTrickBonus) ScoreRound(state *domain.GameState) domain.Score {
	var bonus domain.Score
	if len(state.Tricks) == 0 {
		return bonus
	}
	last := state.Tricks[len(state.Tricks)-1]
	if p := state.Player(last.WinnerID); p != nil {
		bonus.Add(p.Team(), b.Points)
	}
	return bonus
}
