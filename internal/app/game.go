package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyPlayed    = errors.New("player already played in this trick")
	ErrInvalidMove      = errors.New("invalid move")
	ErrGameFull         = errors.New("game is full")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrWrongPhase       = errors.New("input not allowed in current phase")
	ErrWinnerResolution = errors.New("could not resolve trick winner")
	ErrDuplicatePlayer  = errors.New("player already seated")
	ErrUnknownPlayer    = errors.New("player not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrInputPanicked    = errors.New("input handler panicked")
	ErrMalformedInput   = errors.New("malformed input")
)

// Game orchestrates one Belote game: it owns the GameState and runs the
// bidding and playing phases over it. A Game is not safe for concurrent use;
// the caller serializes every input for one game.
type Game struct {
	state       *domain.GameState
	scorer      RoundScorer
	trickPause  time.Duration
	openingSeat int
	// roundStart is the score when the current round was dealt.
	roundStart domain.Score
}

// Option configures a Game.
type Option func(*Game)

// WithRand makes shuffles reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.state.Dealer = domain.NewDealer(rng)
	}
}

// WithRoundScorer replaces the end-of-round scoring hook.
func WithRoundScorer(s RoundScorer) Option {
	return func(g *Game) {
		if s != nil {
			g.scorer = s
		}
	}
}

// WithTrickPause sets the delay carried by the lead prompt after a trick.
func WithTrickPause(d time.Duration) Option {
	return func(g *Game) {
		g.trickPause = d
	}
}

// NewGame creates a game waiting for players.
func NewGame(id string, opts ...Option) *Game {
	g := &Game{
		state:      domain.NewGameState(id, nil),
		scorer:     NoBonus{},
		trickPause: DefaultTrickPause,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.state.Dealer == nil {
		g.state.Dealer = domain.NewDealer(nil)
	}
	return g
}

func (g *Game) ID() string { return g.state.ID }

func (g *Game) Phase() domain.Phase { return g.state.Phase }

// State exposes the aggregate to the goroutine that owns the game.
func (g *Game) State() *domain.GameState { return g.state }

// AddPlayer seats a player and returns the new seat count.
func (g *Game) AddPlayer(p *domain.Player) (n int, err error) {
	defer recoverInput(&err)

	if len(g.state.Players) >= domain.SeatCount {
		return len(g.state.Players), ErrGameFull
	}
	if g.state.Seat(p.ID()) >= 0 {
		return len(g.state.Players), ErrDuplicatePlayer
	}
	g.state.Players = append(g.state.Players, p)
	return len(g.state.Players), nil
}

// Start deals the first batch and opens the auction at seat 0.
func (g *Game) Start() (events []Event, err error) {
	defer recoverInput(&err)

	if g.state.Phase != domain.PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if len(g.state.Players) != PlayersToStartGame {
		return nil, ErrNotEnoughPlayers
	}

	out := &outbox{}
	g.state.Round = 1
	g.openingSeat = 0
	g.dealFirstBatch(out)
	g.startBidding(out, g.openingSeat)
	return out.events, nil
}

// HandleBidInput applies one bid from the auction.
func (g *Game) HandleBidInput(playerID string, contract domain.Contract) (events []Event, err error) {
	defer recoverInput(&err)

	if g.state.Phase != domain.PhaseBidding {
		return nil, ErrWrongPhase
	}
	out := &outbox{}
	err = g.handleBid(out, playerID, contract)
	return out.events, err
}

// HandleMoveInput applies one card play. On an illegal move the returned
// events hold the repeated turn prompt for the same player.
func (g *Game) HandleMoveInput(move domain.Move) (events []Event, err error) {
	defer recoverInput(&err)

	if g.state.Phase != domain.PhasePlaying {
		return nil, ErrWrongPhase
	}
	out := &outbox{}
	err = g.handleMove(out, move)
	return out.events, err
}

// ReassignClientID rebinds a player's transport handle. It reports false for
// unknown players and never touches game state otherwise.
func (g *Game) ReassignClientID(playerID, transportRef string) bool {
	p := g.state.Player(playerID)
	if p == nil {
		return false
	}
	p.Rebind(transportRef)
	return true
}

// Resync returns what a reconnecting player needs to catch up: their hand and,
// when they are to act, the pending prompt. State is left untouched.
func (g *Game) Resync(playerID string) (events []Event, err error) {
	defer recoverInput(&err)

	p := g.state.Player(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.state.Phase == domain.PhaseWaiting {
		return nil, nil
	}

	out := &outbox{}
	out.to(p, EventSendCards, g.sendCardsPayload(p))
	if g.state.CurrentPlayer() == p {
		switch g.state.Phase {
		case domain.PhaseBidding:
			g.askBid(out, p)
		case domain.PhasePlaying:
			out.to(p, EventPlayingTurn, PlayingTurnPayload{PlayerID: p.ID()})
		}
	}
	return out.events, nil
}

// NextRound collects the cards after a scored round, reshuffles and opens a
// new auction at the seat that took the last trick. Scores carry over.
func (g *Game) NextRound() (events []Event, err error) {
	defer recoverInput(&err)

	if g.state.Phase != domain.PhaseScoring {
		return nil, ErrWrongPhase
	}

	out := &outbox{}
	g.state.Round++
	g.state.Tricks = nil
	g.state.CurrentTrick = nil
	g.openingSeat = g.state.CurrentPlayerIndex
	g.dealFirstBatch(out)
	g.startBidding(out, g.openingSeat)
	return out.events, nil
}

// dealFirstBatch clears hands, reshuffles and sends everyone five cards.
func (g *Game) dealFirstBatch(out *outbox) {
	for _, p := range g.state.Players {
		p.ClearHand()
	}
	g.roundStart = g.state.Score
	g.state.Dealer.Shuffle()
	g.state.Dealer.FirstDeal(g.state.Players)
	g.sendCards(out)
}

func (g *Game) sendCards(out *outbox) {
	for _, p := range g.state.Players {
		out.to(p, EventSendCards, g.sendCardsPayload(p))
	}
}

func (g *Game) sendCardsPayload(p *domain.Player) SendCardsPayload {
	players := make([]string, len(g.state.Players))
	for i, sp := range g.state.Players {
		players[i] = sp.ID()
	}
	return SendCardsPayload{
		PlayerID:   p.ID(),
		Hand:       p.Hand(),
		Players:    players,
		CardCounts: g.state.CardCounts(),
	}
}

// recoverInput is the catch boundary around every input handler.
func recoverInput(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrInputPanicked, r)
	}
}
