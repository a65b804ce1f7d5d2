package table

import "github.com/jimmmmothy/Belote-Enterprise/internal/domain"

// Register: seat a player, or rebind a player already seated
type Register struct {
	PlayerID     string
	TransportRef string
	Reply        chan<- RegisterResult
}

type RegisterResult struct {
	Seat    int
	Team    domain.Team
	Rebound bool
	Started bool
	Err     error
}

// Bid: one auction input
type Bid struct {
	PlayerID string
	Contract domain.Contract
	Reply    chan<- error
}

// Move: one card play
type Move struct {
	Move  domain.Move
	Reply chan<- error
}

// Rebind: point a seated player at a new transport ref
type Rebind struct {
	PlayerID     string
	TransportRef string
	Reply        chan<- error
}

// NextRound: deal again after a scored round
type NextRound struct {
	Reply chan<- error
}

// Snapshot: read-only view of the table for listings and bots
type Snapshot struct {
	Reply chan<- Info
}

// Info describes a table at one point in time.
type Info struct {
	ID      string       `json:"id"`
	Phase   domain.Phase `json:"phase"`
	Players []string     `json:"players"`
	Round   int          `json:"round"`
	Score   domain.Score `json:"score"`
}
