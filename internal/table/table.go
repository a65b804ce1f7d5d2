package table

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"
)

const (
	inboxSize  = 64
	eventsSize = 256
)

// historyTimeout bounds one RecordRound call made from the table goroutine.
const historyTimeout = 5 * time.Second

// Table runs one game on its own goroutine. Every command goes through Inbox
// and is applied in arrival order; events leave through Events in the order
// the game emitted them.
type Table struct {
	ID    string
	Inbox chan any

	game    *app.Game
	logger  runtime.Logger
	history ports.RoundHistoryPort

	queue    chan app.Event
	events   chan app.Event
	quit     chan struct{}
	stopOnce sync.Once
}

func New(id string, logger runtime.Logger, history ports.RoundHistoryPort, opts ...app.Option) *Table {
	return &Table{
		ID:      id,
		Inbox:   make(chan any, inboxSize),
		game:    app.NewGame(id, opts...),
		logger:  logger.WithField("game", id),
		history: history,
		queue:   make(chan app.Event, eventsSize),
		events:  make(chan app.Event, eventsSize),
		quit:    make(chan struct{}),
	}
}

// Events is the outbound stream. It must be drained, and is closed by Stop.
func (t *Table) Events() <-chan app.Event {
	return t.events
}

func (t *Table) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })
}

func (t *Table) Run() {
	go t.pump()

	for {
		select {
		case <-t.quit:
			return
		case cmd := <-t.Inbox:
			t.handleCommand(cmd)
		}
	}
}

// pump forwards queued events, sleeping through Event.Delay so the worker
// never waits on a paused prompt.
func (t *Table) pump() {
	defer close(t.events)

	for {
		select {
		case <-t.quit:
			return
		case ev := <-t.queue:
			if ev.Delay > 0 {
				timer := time.NewTimer(ev.Delay)
				select {
				case <-timer.C:
				case <-t.quit:
					timer.Stop()
					return
				}
			}
			select {
			case t.events <- ev:
			case <-t.quit:
				return
			}
		}
	}
}

func (t *Table) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Register:
		c.Reply <- t.register(c.PlayerID, c.TransportRef)
	case Bid:
		c.Reply <- t.apply(func() ([]app.Event, error) {
			return t.game.HandleBidInput(c.PlayerID, c.Contract)
		})
	case Move:
		c.Reply <- t.apply(func() ([]app.Event, error) {
			return t.game.HandleMoveInput(c.Move)
		})
	case Rebind:
		if !t.game.ReassignClientID(c.PlayerID, c.TransportRef) {
			c.Reply <- app.ErrUnknownPlayer
			return
		}
		c.Reply <- nil
	case NextRound:
		c.Reply <- t.apply(t.game.NextRound)
	case Snapshot:
		c.Reply <- t.info()
	default:
		t.logger.Warn("unknown command %T", cmd)
	}
}

func (t *Table) register(playerID, ref string) RegisterResult {
	if playerID == "" {
		return RegisterResult{Seat: -1, Err: fmt.Errorf("%w: empty player id", app.ErrUnknownPlayer)}
	}

	state := t.game.State()
	if seat := state.Seat(playerID); seat >= 0 {
		t.game.ReassignClientID(playerID, ref)
		t.logger.Info("player %s rebound to seat %d", playerID, seat)
		return RegisterResult{
			Seat:    seat,
			Team:    state.Players[seat].Team(),
			Rebound: true,
			Err:     t.apply(func() ([]app.Event, error) { return t.game.Resync(playerID) }),
		}
	}

	seat := len(state.Players)
	team := domain.TeamForSeat(seat)
	n, err := t.game.AddPlayer(domain.NewPlayer(playerID, team, ref))
	if err != nil {
		return RegisterResult{Seat: -1, Err: err}
	}
	t.logger.Info("player %s took seat %d", playerID, seat)

	res := RegisterResult{Seat: seat, Team: team}
	if n == app.PlayersToStartGame {
		res.Err = t.apply(t.game.Start)
		res.Started = res.Err == nil
	}
	return res
}

// apply runs one game transition, publishes its events and recovers from
// anything the game itself did not.
func (t *Table) apply(fn func() ([]app.Event, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("input handler panicked: %v", r)
			err = fmt.Errorf("%w: %v", app.ErrInputPanicked, r)
		}
	}()

	events, err := fn()
	t.publish(events)
	if err != nil {
		t.logger.Debug("input rejected: %v", err)
	}
	return err
}

func (t *Table) publish(events []app.Event) {
	for _, ev := range events {
		if ev.Kind == app.EventRoundFinished {
			t.recordRound()
		}
		select {
		case t.queue <- ev:
		case <-t.quit:
			return
		}
	}
}

func (t *Table) recordRound() {
	if t.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := t.history.RecordRound(ctx, t.game.RoundRecord(time.Now())); err != nil {
		t.logger.Warn("failed to record round: %v", err)
	}
}

func (t *Table) info() Info {
	s := t.game.State()
	players := make([]string, len(s.Players))
	for i, p := range s.Players {
		players[i] = p.ID()
	}
	return Info{ID: t.ID, Phase: s.Phase, Players: players, Round: s.Round, Score: s.Score}
}

func (t *Table) send(ctx context.Context, cmd any) error {
	select {
	case t.Inbox <- cmd:
		return nil
	case <-t.quit:
		return app.ErrGameNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, t *Table, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-t.quit:
		return zero, app.ErrGameNotFound
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Register seats playerID, or rebinds and resyncs a player already seated.
// The fourth registration starts the game.
func (t *Table) Register(ctx context.Context, playerID, transportRef string) (RegisterResult, error) {
	reply := make(chan RegisterResult, 1)
	if err := t.send(ctx, Register{PlayerID: playerID, TransportRef: transportRef, Reply: reply}); err != nil {
		return RegisterResult{Seat: -1}, err
	}
	res, err := await(ctx, t, reply)
	if err != nil {
		return RegisterResult{Seat: -1}, err
	}
	return res, res.Err
}

func (t *Table) Bid(ctx context.Context, playerID string, contract domain.Contract) error {
	reply := make(chan error, 1)
	if err := t.send(ctx, Bid{PlayerID: playerID, Contract: contract, Reply: reply}); err != nil {
		return err
	}
	return t.result(ctx, reply)
}

func (t *Table) Move(ctx context.Context, move domain.Move) error {
	reply := make(chan error, 1)
	if err := t.send(ctx, Move{Move: move, Reply: reply}); err != nil {
		return err
	}
	return t.result(ctx, reply)
}

func (t *Table) Rebind(ctx context.Context, playerID, transportRef string) error {
	reply := make(chan error, 1)
	if err := t.send(ctx, Rebind{PlayerID: playerID, TransportRef: transportRef, Reply: reply}); err != nil {
		return err
	}
	return t.result(ctx, reply)
}

func (t *Table) NextRound(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := t.send(ctx, NextRound{Reply: reply}); err != nil {
		return err
	}
	return t.result(ctx, reply)
}

func (t *Table) Info(ctx context.Context) (Info, error) {
	reply := make(chan Info, 1)
	if err := t.send(ctx, Snapshot{Reply: reply}); err != nil {
		return Info{}, err
	}
	return await(ctx, t, reply)
}

func (t *Table) result(ctx context.Context, reply <-chan error) error {
	err, waitErr := await(ctx, t, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}
