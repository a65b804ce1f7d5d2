package ws

import (
	"fmt"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// Client message types.
const (
	TypeJoin      = "join"
	TypeBid       = "bid"
	TypePlay      = "play"
	TypeNextRound = "next_round"
	TypeResync    = "resync"
)

// Server message types that are not game events.
const (
	TypeJoined = "joined"
	TypeError  = "error"
)

// ClientMessage is every frame a client sends. Fields not used by Type are ignored.
type ClientMessage struct {
	Type     string `json:"type"`
	Game     string `json:"game,omitempty"`
	Player   string `json:"player,omitempty"`
	Token    string `json:"token,omitempty"`
	Contract string `json:"contract,omitempty"`
	Suit     string `json:"suit,omitempty"`
	Rank     string `json:"rank,omitempty"`
}

// ServerMessage wraps game events, join replies and errors. Game events use
// the event kind as Type.
type ServerMessage struct {
	Type  string     `json:"type"`
	Game  string     `json:"game,omitempty"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorView `json:"error,omitempty"`
}

type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JoinedView answers a join or resync.
type JoinedView struct {
	Seat    int         `json:"seat"`
	Team    domain.Team `json:"team"`
	Rebound bool        `json:"rebound"`
	Started bool        `json:"started"`
	Token   string      `json:"token,omitempty"`
}

func errorMessage(game string, err error) ServerMessage {
	return ServerMessage{
		Type:  TypeError,
		Game:  game,
		Error: &ErrorView{Code: app.ErrorCode(err), Message: err.Error()},
	}
}

func eventMessage(game string, ev app.Event) ServerMessage {
	return ServerMessage{Type: string(ev.Kind), Game: game, Data: ev.Payload}
}

func (m ClientMessage) contract() (domain.Contract, error) {
	c, err := domain.ParseContract(m.Contract)
	if err != nil {
		return domain.ContractPass, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	return c, nil
}

func (m ClientMessage) move(playerID string) (domain.Move, error) {
	suit, err := domain.ParseSuit(m.Suit)
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	rank, err := domain.ParseRank(m.Rank)
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	return domain.Move{PlayerID: playerID, Suit: suit, Rank: rank}, nil
}
