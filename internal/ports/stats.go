package ports

import (
	"context"
	"time"
)

// PlayerStats is the running summary kept per account.
type PlayerStats struct {
	RoundsPlayed int       `json:"rounds_played"`
	RoundsWon    int       `json:"rounds_won"`
	PointsWon    int       `json:"points_won"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlayerStatsPort creates the stats record for a new account.
type PlayerStatsPort interface {
	// InitStatsOnce writes an empty stats record unless one exists.
	// Returns created=false when the record was already there.
	InitStatsOnce(ctx context.Context, userID string) (bool, error)
}
