package app

import (
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventSendCards       EventKind = "SEND_CARDS"
	EventBiddingTurn     EventKind = "BIDDING_TURN"
	EventBidPlaced       EventKind = "BID_PLACED"
	EventBiddingFinished EventKind = "BIDDING_FINISHED"
	EventPlayingTurn     EventKind = "PLAYING_TURN"
	EventMovePlayed      EventKind = "MOVE_PLAYED"
	EventTrickFinished   EventKind = "TRICK_FINISHED"
	EventRoundFinished   EventKind = "ROUND_FINISHED"
	EventRoundRestart    EventKind = "ROUND_RESTART"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // transport refs; empty means broadcast
	// Delay asks the transport to hold this event, and everything after it,
	// for a moment. It never changes the order of events.
	Delay time.Duration
}

// Broadcast reports whether the event goes to every seat.
func (e Event) Broadcast() bool {
	return len(e.Recipients) == 0
}

type SendCardsPayload struct {
	PlayerID   string         `json:"player_id"`
	Hand       []domain.Card  `json:"hand"`
	Players    []string       `json:"players"`
	CardCounts map[string]int `json:"card_counts"`
}

type BiddingTurnPayload struct {
	PlayerID  string            `json:"player_id"`
	Available []domain.Contract `json:"available"`
}

type BidPlacedPayload struct {
	PlayerID string          `json:"player_id"`
	Contract domain.Contract `json:"contract"`
}

type BiddingFinishedPayload struct {
	HighestContract domain.Contract `json:"highest_contract"`
	BidderID        string          `json:"bidder_id"`
}

type PlayingTurnPayload struct {
	PlayerID string `json:"player_id"`
}

type MovePlayedPayload struct {
	PlayerID string      `json:"player_id"`
	Suit     domain.Suit `json:"suit"`
	Rank     domain.Rank `json:"rank"`
}

type TrickFinishedPayload struct {
	WinnerID string       `json:"winner_id"`
	Points   int          `json:"points"`
	Score    domain.Score `json:"score"`
}

type RoundFinishedPayload struct {
	Round    int             `json:"round"`
	Contract domain.Contract `json:"contract"`
	Score    domain.Score    `json:"score"`
}

type RoundRestartPayload struct {
	Reason string `json:"reason"`
}

// outbox collects the events of one transition in emission order.
type outbox struct {
	events []Event
}

func (o *outbox) broadcast(kind EventKind, payload any) {
	o.events = append(o.events, Event{Kind: kind, Payload: payload})
}

func (o *outbox) to(p *domain.Player, kind EventKind, payload any) {
	o.events = append(o.events, Event{Kind: kind, Payload: payload, Recipients: []string{p.TransportRef()}})
}

func (o *outbox) toAfter(p *domain.Player, delay time.Duration, kind EventKind, payload any) {
	o.events = append(o.events, Event{Kind: kind, Payload: payload, Recipients: []string{p.TransportRef()}, Delay: delay})
}
