package app

import (
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"
)

// RoundRecord snapshots a scored round for the history port.
func (g *Game) RoundRecord(now time.Time) ports.RoundRecord {
	s := g.state
	players := make([]string, len(s.Players))
	teams := make([]int, len(s.Players))
	for i, p := range s.Players {
		players[i] = p.ID()
		teams[i] = int(p.Team())
	}
	return ports.RoundRecord{
		GameID:     s.ID,
		Round:      s.Round,
		Contract:   s.HighestContract.String(),
		BidderID:   highestBidder(s),
		Players:    players,
		Teams:      teams,
		Team0:      s.Score.Of(domain.Team0) - g.roundStart.Team0,
		Team1:      s.Score.Of(domain.Team1) - g.roundStart.Team1,
		Total:      [2]int{s.Score.Team0, s.Score.Team1},
		Tricks:     len(s.Tricks),
		FinishedAt: now.UTC(),
	}
}
