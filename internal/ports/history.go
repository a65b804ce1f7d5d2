package ports

import (
	"context"
	"time"
)

// RoundRecord summarizes one finished round.
type RoundRecord struct {
	GameID     string    `json:"game_id"`
	Round      int       `json:"round"`
	Contract   string    `json:"contract"`
	BidderID   string    `json:"bidder_id"`
	Players    []string  `json:"players"`
	Teams      []int     `json:"teams"`
	Team0      int       `json:"team0"` // this round only
	Team1      int       `json:"team1"` // this round only
	Total      [2]int    `json:"total"`
	Tricks     int       `json:"tricks"`
	FinishedAt time.Time `json:"finished_at"`
}

// RoundHistoryPort persists finished rounds.
type RoundHistoryPort interface {
	// RecordRound stores one round. Implementations must tolerate being
	// called for games that have bots in some seats.
	RecordRound(ctx context.Context, record RoundRecord) error
}

// PointsFor returns the points taken by the player's team and whether that
// team outscored the other. ok is false for a player not in the round.
func (r RoundRecord) PointsFor(playerID string) (points int, won bool, ok bool) {
	for i, id := range r.Players {
		if id != playerID || i >= len(r.Teams) {
			continue
		}
		if r.Teams[i] == 0 {
			return r.Team0, r.Team0 > r.Team1, true
		}
		return r.Team1, r.Team1 > r.Team0, true
	}
	return 0, false, false
}
