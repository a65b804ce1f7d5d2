// Package ws serves Belote tables to plain WebSocket clients, outside Nakama.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/logging"
	"github.com/jimmmmothy/Belote-Enterprise/internal/table"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

// TokenIssuer is the iss claim of seat tokens minted by this server.
const TokenIssuer = "belote-ws"

// commandTimeout bounds one round trip to a table.
const commandTimeout = 5 * time.Second

var gameNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Server routes client frames to a table.Manager and table events back to
// the connections they target.
type Server struct {
	manager  *table.Manager
	tokens   *app.SeatTokenService
	logger   runtime.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client // transport ref -> client

	bindingsMu sync.Mutex
	bindings   map[string]*gameBindings // game id -> seat bindings
}

// gameBindings orders the seat bindings of one game so a late disconnect
// never unbinds a player who already reconnected. Games never wait on each
// other.
type gameBindings struct {
	mu    sync.Mutex
	seats map[string]string // player id -> transport ref currently bound
}

// NewServer builds a server with its own table manager. tokens may be nil, in
// which case a seated player can rejoin without proof.
func NewServer(logger runtime.Logger, tokens *app.SeatTokenService, opts ...table.ManagerOption) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		tokens: tokens,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:  make(map[string]*client),
		bindings: make(map[string]*gameBindings),
	}
	opts = append([]table.ManagerOption{table.WithLogger(logger)}, opts...)
	opts = append(opts, table.WithOnCreate(s.watch))
	s.manager = table.NewManager(opts...)
	return s
}

func (s *Server) Manager() *table.Manager {
	return s.manager
}

// Handler mounts /ws, /tables and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/tables", s.handleTables)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// bindingsFor returns the bindings of gameID, creating them on first use.
func (s *Server) bindingsFor(gameID string) *gameBindings {
	s.bindingsMu.Lock()
	defer s.bindingsMu.Unlock()
	b, ok := s.bindings[gameID]
	if !ok {
		b = &gameBindings{seats: make(map[string]string)}
		s.bindings[gameID] = b
	}
	return b
}

// Close stops every table and drops every connection.
func (s *Server) Close() {
	s.manager.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref, c := range s.clients {
		c.close()
		delete(s.clients, ref)
	}
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.manager.List(r.Context())); err != nil {
		s.logger.Warn("failed to write table list: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade error: %v", err)
		return
	}

	c := newClient(uuid.NewString(), conn, s.logger)
	s.mu.Lock()
	s.clients[c.ref] = c
	s.mu.Unlock()
	s.logger.Debug("client %s connected from %s", c.ref, r.RemoteAddr)

	go c.writePump()
	c.readPump(s.handleMessage)
	s.disconnect(c)
}

// watch drains a new table's events for as long as the table runs.
func (s *Server) watch(t *table.Table) {
	go func() {
		for ev := range t.Events() {
			s.route(t.ID, ev)
		}
	}()
}

// route sends an event to its recipients. A targeted event whose recipient
// is gone is dropped, never broadcast.
func (s *Server) route(gameID string, ev app.Event) {
	msg := eventMessage(gameID, ev)

	s.mu.RLock()
	var targets []*client
	if ev.Broadcast() {
		for _, c := range s.clients {
			if c.game() == gameID {
				targets = append(targets, c)
			}
		}
	} else {
		for _, ref := range ev.Recipients {
			if c, ok := s.clients[ref]; ok {
				targets = append(targets, c)
			}
		}
	}
	s.mu.RUnlock()

	for _, c := range targets {
		c.sendJSON(msg)
	}
}

func (s *Server) disconnect(c *client) {
	s.mu.Lock()
	delete(s.clients, c.ref)
	s.mu.Unlock()
	c.close()

	gameID, playerID := c.binding()
	if gameID == "" {
		return
	}

	b := s.bindingsFor(gameID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seats[playerID] != c.ref {
		return
	}
	delete(b.seats, playerID)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := s.manager.Rebind(ctx, gameID, playerID, ""); err != nil && !errors.Is(err, app.ErrGameNotFound) {
		s.logger.Warn("failed to unbind %s from %s: %v", playerID, gameID, err)
	}
	s.logger.Info("player %s disconnected from %s", playerID, gameID)
}

func (s *Server) handleMessage(c *client, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case TypeJoin:
		err = s.join(ctx, c, msg)
	case TypeResync:
		err = s.resync(ctx, c)
	case TypeBid:
		err = s.bid(ctx, c, msg)
	case TypePlay:
		err = s.play(ctx, c, msg)
	case TypeNextRound:
		err = s.nextRound(ctx, c)
	default:
		err = fmt.Errorf("%w: unknown message type %q", app.ErrMalformedInput, msg.Type)
	}
	if err != nil {
		gameID, _ := c.binding()
		if gameID == "" {
			gameID = msg.Game
		}
		c.sendJSON(errorMessage(gameID, err))
	}
}

func (s *Server) join(ctx context.Context, c *client, msg ClientMessage) error {
	if gameID, _ := c.binding(); gameID != "" {
		return fmt.Errorf("%w: connection already joined %s", app.ErrMalformedInput, gameID)
	}
	if !gameNamePattern.MatchString(msg.Game) || msg.Player == "" {
		return fmt.Errorf("%w: game and player are required", app.ErrMalformedInput)
	}

	b := s.bindingsFor(msg.Game)
	b.mu.Lock()
	defer b.mu.Unlock()

	t := s.manager.GetOrCreate(msg.Game)
	info, err := t.Info(ctx)
	if err != nil {
		return err
	}
	if s.tokens != nil && slices.Contains(info.Players, msg.Player) {
		if err := s.tokens.Verify(msg.Token, msg.Player, msg.Game); err != nil {
			return err
		}
	}

	c.bind(msg.Game, msg.Player)
	res, err := t.Register(ctx, msg.Player, c.ref)
	if err != nil && res.Seat < 0 {
		c.bind("", "")
		return err
	}
	b.seats[msg.Player] = c.ref
	s.logger.Info("player %s joined %s at seat %d", msg.Player, msg.Game, res.Seat)

	s.sendJoined(c, msg.Game, msg.Player, res)
	return err
}

func (s *Server) resync(ctx context.Context, c *client) error {
	gameID, playerID, err := c.requireBinding()
	if err != nil {
		return err
	}
	res, err := s.manager.Register(ctx, gameID, playerID, c.ref)
	if err != nil {
		return err
	}
	s.sendJoined(c, gameID, playerID, res)
	return nil
}

func (s *Server) sendJoined(c *client, gameID, playerID string, res table.RegisterResult) {
	view := JoinedView{Seat: res.Seat, Team: res.Team, Rebound: res.Rebound, Started: res.Started}
	if s.tokens != nil {
		token, err := s.tokens.GenerateToken(playerID, gameID, res.Seat)
		if err != nil {
			s.logger.Error("failed to issue seat token for %s: %v", playerID, err)
		}
		view.Token = token
	}
	c.sendJSON(ServerMessage{Type: TypeJoined, Game: gameID, Data: view})
}

func (s *Server) bid(ctx context.Context, c *client, msg ClientMessage) error {
	gameID, playerID, err := c.requireBinding()
	if err != nil {
		return err
	}
	contract, err := msg.contract()
	if err != nil {
		return err
	}
	return s.manager.Bid(ctx, gameID, playerID, contract)
}

func (s *Server) play(ctx context.Context, c *client, msg ClientMessage) error {
	gameID, playerID, err := c.requireBinding()
	if err != nil {
		return err
	}
	move, err := msg.move(playerID)
	if err != nil {
		return err
	}
	return s.manager.Move(ctx, gameID, move)
}

func (s *Server) nextRound(ctx context.Context, c *client) error {
	gameID, _, err := c.requireBinding()
	if err != nil {
		return err
	}
	return s.manager.NextRound(ctx, gameID)
}
