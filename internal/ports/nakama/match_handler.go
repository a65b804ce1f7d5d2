package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/bot"
	"github.com/jimmmmothy/Belote-Enterprise/internal/config"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label

	matchTickRate = 5
	// reconnectGraceSeconds is how long a running game survives with every human disconnected.
	reconnectGraceSeconds = 60
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Name      string                      `json:"name"`  // Game name advertised in the label; empty for quick matches
	Seats     [domain.SeatCount]string    `json:"seats"` // User ids by seat, empty string means seat is empty
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // UserId -> Presence
	Sessions  map[string]runtime.Presence `json:"-"` // SessionId -> Presence, for event recipients
	Game      *app.Game                   `json:"-"` // Belote game; WAITING until every seat is taken
	Tokens    *app.SeatTokenService       `json:"-"` // nil when no secret is configured
	History   ports.RoundHistoryPort      `json:"-"`

	// Outbox holds events not yet sent. An event with a Delay holds itself
	// and everything behind it until HoldUntil.
	Outbox    []app.Event      `json:"-"`
	HoldUntil time.Time        `json:"-"`
	Now       func() time.Time `json:"-"`
	Label     string           `json:"-"`

	BotsEnabled      bool                  `json:"bots_enabled"`
	BotMinDelay      int                   `json:"bot_min_delay"`       // Min seconds a bot waits
	BotMaxDelay      int                   `json:"bot_max_delay"`       // Max seconds a bot waits
	BotAutoFillDelay int                   `json:"bot_auto_fill_delay"` // Seconds a lobby waits before bots take the empty seats
	BotWaitUntil     int64                 `json:"bot_wait_until"`      // Tick when the bot to act should act
	WaitingSinceTick int64                 `json:"waiting_since_tick"`  // Tick when the auto-fill timer started
	EmptySinceTick   int64                 `json:"empty_since_tick"`    // Tick when the last human disconnected mid-game
	Bots             map[string]*bot.Agent `json:"-"`
}

func newMatchState(gameID, name string, cfg *config.GameConfig, tokens *app.SeatTokenService, history ports.RoundHistoryPort) *MatchState {
	lo, hi := cfg.BotDelayRange()
	return &MatchState{
		Name:             name,
		Presences:        make(map[string]runtime.Presence),
		Sessions:         make(map[string]runtime.Presence),
		Game:             app.NewGame(gameID, app.OptionsFromConfig(cfg)...),
		Tokens:           tokens,
		History:          history,
		Now:              time.Now,
		BotsEnabled:      cfg.BotsOn(),
		BotMinDelay:      lo,
		BotMaxDelay:      hi,
		BotAutoFillDelay: cfg.BotAutoFillDelay(),
		Bots:             make(map[string]*bot.Agent),
	}
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// connectedHumans counts seated humans with a live presence.
func (ms *MatchState) connectedHumans() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" || isBotUserId(seat) {
			continue
		}
		if _, ok := ms.Presences[seat]; ok {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) inLobby() bool {
	return ms.Game.Phase() == domain.PhaseWaiting
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func ticks(seconds int) int64 {
	return int64(seconds * matchTickRate)
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	if cfg == nil {
		cfg = config.Defaults()
	}

	gameID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	if gameID == "" {
		gameID = uuid.NewString()
	}
	name, _ := params["name"].(string)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	var tokens *app.SeatTokenService
	if secret := env[envSeatTokenSecret]; secret != "" {
		tokens = app.NewSeatTokenService(secret, seatTokenIssuer, cfg.SeatTokenTTL())
	}

	state := newMatchState(gameID, name, cfg, tokens, NewNakamaRoundHistoryAdapter(nk))
	applyEnvOverrides(state, env)

	label, err := mh.computeLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.Label = label

	logger.Info("MatchInit: Game %s (%q) created.", gameID, name)
	return state, matchTickRate, label
}

func applyEnvOverrides(state *MatchState, env map[string]string) {
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env[envBotMinDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotMinDelay = i
		}
	}
	if val, ok := env[envBotMaxDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env[envBotAutoFillDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	if !matchState.inLobby() {
		if matchState.seatOf(userID) < 0 {
			return state, false, "Match in progress"
		}
		if matchState.Tokens != nil {
			if err := matchState.Tokens.Verify(metadata[metadataSeatToken], userID, matchState.Game.ID()); err != nil {
				logger.Warn("MatchJoinAttempt: User %s failed seat token check: %v", userID, err)
				return state, false, "Invalid seat token"
			}
		}
		return state, true, ""
	}

	if matchState.seatOf(userID) >= 0 || matchState.GetOpenSeatsCount() > 0 {
		return state, true, ""
	}
	for _, seat := range matchState.Seats {
		if isBotUserId(seat) {
			return state, true, ""
		}
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Sessions[p.GetSessionId()] = p

		if !matchState.inLobby() {
			// Reconnect: the seat was kept, point the player at the new session.
			matchState.Game.ReassignClientID(userID, p.GetSessionId())
			matchState.EmptySinceTick = 0
			err := mh.apply(ctx, matchState, logger, func() ([]app.Event, error) {
				return matchState.Game.Resync(userID)
			})
			if err != nil {
				logger.Warn("MatchJoin: Resync for %s failed: %v", userID, err)
			}
			logger.Info("MatchJoin: User %s reconnected to seat %d.", userID, matchState.seatOf(userID))
			continue
		}

		if matchState.seatOf(userID) >= 0 {
			continue
		}
		if !mh.assignSeat(matchState, logger, userID) {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	mh.tryStart(ctx, matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	mh.flushEvents(ctx, matchState, dispatcher, logger)

	return matchState
}

// assignSeat takes the lowest empty seat, or replaces a bot while in the lobby.
func (mh *matchHandler) assignSeat(state *MatchState, logger runtime.Logger, userID string) bool {
	if seat := domain.LowestAvailableSeat(&state.Seats); seat >= 0 {
		state.Seats[seat] = userID
		logger.Debug("assignSeat: User %s took seat %d.", userID, seat)
		return true
	}
	for i, seatUserId := range state.Seats {
		if isBotUserId(seatUserId) {
			logger.Info("assignSeat: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
			delete(state.Bots, seatUserId)
			state.Seats[i] = userID
			return true
		}
	}
	return false
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Sessions, p.GetSessionId())
		if current, ok := matchState.Presences[userID]; ok && current.GetSessionId() == p.GetSessionId() {
			delete(matchState.Presences, userID)
		}

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.inLobby() {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
			continue
		}
		// The seat is kept for a reconnect; targeted events go nowhere meanwhile.
		if _, stillHere := matchState.Presences[userID]; !stillHere {
			matchState.Game.ReassignClientID(userID, "")
			logger.Info("MatchLeave: User %s disconnected from seat %d.", userID, seat)
		}
	}

	if matchState.inLobby() && shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	if !matchState.inLobby() && matchState.connectedHumans() == 0 && matchState.EmptySinceTick == 0 {
		matchState.EmptySinceTick = tick
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpBid:
			mh.handleBid(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewRound:
			mh.handleNewRound(ctx, matchState, dispatcher, logger, msg)
		case OpResync:
			mh.handleResync(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	mh.flushEvents(ctx, matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	if matchState.EmptySinceTick > 0 && matchState.Tick-matchState.EmptySinceTick >= ticks(reconnectGraceSeconds) {
		logger.Info("MatchLoop: No human reconnected within %ds, terminating.", reconnectGraceSeconds)
		return nil
	}

	return matchState
}

// sender resolves the seated player behind a message, replying with an
// error when the sender has no seat in the running game.
func (mh *matchHandler) sender(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) (string, bool) {
	userID := msg.GetUserId()
	if state.Game.State().Seat(userID) < 0 {
		err := app.ErrWrongPhase
		if !state.inLobby() {
			err = app.ErrUnknownPlayer
		}
		mh.sendError(state, dispatcher, logger, userID, err)
		return "", false
	}
	return userID, true
}

func (mh *matchHandler) handleBid(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID, ok := mh.sender(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	contract, err := decodeBid(msg.GetData())
	if err != nil {
		logger.Warn("handleBid: Bad payload from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, err)
		return
	}

	err = mh.apply(ctx, state, logger, func() ([]app.Event, error) {
		return state.Game.HandleBidInput(userID, contract)
	})
	if err != nil {
		logger.Warn("handleBid: User %s failed to bid %s: %v", userID, contract, err)
		mh.sendError(state, dispatcher, logger, userID, err)
	}
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID, ok := mh.sender(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	move, err := decodeMove(userID, msg.GetData())
	if err != nil {
		logger.Warn("handlePlayCard: Bad payload from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, err)
		return
	}

	err = mh.apply(ctx, state, logger, func() ([]app.Event, error) {
		return state.Game.HandleMoveInput(move)
	})
	if err != nil {
		var hand []domain.Card
		if p := state.Game.State().Player(userID); p != nil {
			hand = p.Hand()
		}
		logger.Warn("handlePlayCard: User %s failed to play %s: %v. Hand: %v", userID, move.Card(), err, hand)
		mh.sendError(state, dispatcher, logger, userID, err)
	}
}

func (mh *matchHandler) handleNewRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID, ok := mh.sender(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	if err := mh.apply(ctx, state, logger, state.Game.NextRound); err != nil {
		logger.Debug("handleNewRound: Request from %s rejected: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, err)
		return
	}
	state.BotWaitUntil = 0
	logger.Info("handleNewRound: Round %d dealt at request of %s.", state.Game.State().Round, userID)
}

func (mh *matchHandler) handleResync(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID, ok := mh.sender(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	if p, ok := state.Presences[userID]; ok {
		state.Game.ReassignClientID(userID, p.GetSessionId())
	}
	if err := mh.apply(ctx, state, logger, func() ([]app.Event, error) { return state.Game.Resync(userID) }); err != nil {
		mh.sendError(state, dispatcher, logger, userID, err)
	}
	mh.broadcastMatchState(state, dispatcher, logger)
}

// tryStart seats every occupant in the game and deals once the table is full.
func (mh *matchHandler) tryStart(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if !state.inLobby() || state.GetOpenSeatsCount() > 0 {
		return
	}

	for i, userID := range state.Seats {
		ref := ""
		if p, ok := state.Presences[userID]; ok {
			ref = p.GetSessionId()
		}
		if _, err := state.Game.AddPlayer(domain.NewPlayer(userID, domain.TeamForSeat(i), ref)); err != nil {
			logger.Error("tryStart: Failed to seat %s: %v", userID, err)
			return
		}
	}

	if err := mh.apply(ctx, state, logger, state.Game.Start); err != nil {
		logger.Error("tryStart: Failed to start game: %v", err)
		return
	}
	state.WaitingSinceTick = 0
	logger.Info("tryStart: Game %s started with %d humans.", state.Game.ID(), state.GetHumanPlayerCount())
}

// apply runs one game transition behind a recover boundary and queues what
// it emitted. Rounds are recorded as soon as they finish.
func (mh *matchHandler) apply(ctx context.Context, state *MatchState, logger runtime.Logger, fn func() ([]app.Event, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("apply: Input handler panicked: %v", r)
			err = fmt.Errorf("%w: %v", app.ErrInputPanicked, r)
		}
	}()

	events, err := fn()
	for _, ev := range events {
		if ev.Kind == app.EventRoundFinished {
			mh.recordRound(ctx, state, logger)
		}
	}
	state.Outbox = append(state.Outbox, events...)
	return err
}

func (mh *matchHandler) recordRound(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.History == nil {
		return
	}
	record := state.Game.RoundRecord(state.Now())
	if err := state.History.RecordRound(ctx, record); err != nil {
		logger.Error("recordRound: Failed to store round %d of %s: %v", record.Round, record.GameID, err)
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby once humans have waited long enough.
	if state.inLobby() {
		if state.GetHumanPlayerCount() == 0 || state.GetOpenSeatsCount() == 0 {
			state.WaitingSinceTick = 0
			return
		}
		if state.WaitingSinceTick == 0 {
			state.WaitingSinceTick = state.Tick
			logger.Debug("processBots: Lobby waiting, starting auto-fill timer.")
		}
		if state.Tick-state.WaitingSinceTick < ticks(state.BotAutoFillDelay) {
			return
		}

		for i, seat := range state.Seats {
			if seat != "" {
				continue
			}
			identity := bot.GetBotIdentity(i)
			if state.seatOf(identity.UserID) >= 0 {
				identity = bot.GeneratedIdentity(i)
			}
			agent, err := bot.NewAgent(identity, bot.LevelForDifficulty(identity.Difficulty))
			if err != nil {
				logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
				continue
			}
			state.Seats[i] = identity.UserID
			state.Bots[identity.UserID] = agent
			logger.Info("processBots: Added bot %s (%s) to seat %d", identity.DisplayName, identity.UserID, i)
		}
		state.WaitingSinceTick = 0
		mh.tryStart(ctx, state, logger)
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
		return
	}

	// 2. Bot turns, once everything already emitted has gone out.
	if len(state.Outbox) > 0 {
		return
	}
	phase := state.Game.Phase()
	if phase != domain.PhaseBidding && phase != domain.PhasePlaying {
		state.BotWaitUntil = 0
		return
	}
	current := state.Game.State().CurrentPlayer()
	if current == nil || !isBotUserId(current.ID()) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if state.BotMaxDelay > state.BotMinDelay {
			delay += rand.Intn(state.BotMaxDelay - state.BotMinDelay + 1)
		}
		state.BotWaitUntil = state.Tick + ticks(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", current.ID(), state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.ID()]
	if !exists {
		identity, _ := bot.GetBotConfig(current.ID())
		identity.UserID = current.ID()
		var err error
		agent, err = bot.NewAgent(identity, bot.LevelForDifficulty(identity.Difficulty))
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[current.ID()] = agent
	}

	if err := mh.apply(ctx, state, logger, func() ([]app.Event, error) { return agent.Apply(state.Game) }); err != nil {
		logger.Error("processBots: Bot %s failed to act: %v", current.ID(), err)
	}
}

// flushEvents dispatches queued events in order, stopping at a held one.
func (mh *matchHandler) flushEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	now := state.Now()
	for len(state.Outbox) > 0 {
		ev := state.Outbox[0]
		if ev.Delay > 0 {
			if state.HoldUntil.IsZero() {
				state.HoldUntil = now.Add(ev.Delay)
			}
			if now.Before(state.HoldUntil) {
				return
			}
			state.HoldUntil = time.Time{}
		}
		state.Outbox = state.Outbox[1:]
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent sends one app event to its recipients and lets the bots see
// public events.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	if ev.Broadcast() {
		for _, agent := range state.Bots {
			agent.OnGameEvent(ev)
		}
	}

	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if !ev.Broadcast() {
		for _, ref := range ev.Recipients {
			if p, ok := state.Sessions[ref]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted at a bot or a disconnected player: never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to send event %v: %v", ev.Kind, err)
	}
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	data, err := encodeError(cause)
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

// SeatView is one seat in the match state snapshot.
type SeatView struct {
	Seat        int    `json:"seat"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Team        int    `json:"team"`
	IsBot       bool   `json:"is_bot"`
	Connected   bool   `json:"connected"`
	Cards       int    `json:"cards"`
}

// MatchStateSnapshot is broadcast whenever seating changes.
type MatchStateSnapshot struct {
	Name     string          `json:"name"`
	Phase    domain.Phase    `json:"phase"`
	Round    int             `json:"round"`
	Contract domain.Contract `json:"contract"`
	Score    domain.Score    `json:"score"`
	Seats    []SeatView      `json:"seats"`
	Tick     int64           `json:"tick"`
}

func (mh *matchHandler) snapshot(state *MatchState) MatchStateSnapshot {
	gs := state.Game.State()
	counts := gs.CardCounts()
	seats := make([]SeatView, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		view := SeatView{
			Seat:        i,
			UserID:      userID,
			DisplayName: userID,
			Team:        int(domain.TeamForSeat(i)),
			IsBot:       isBotUserId(userID),
			Cards:       counts[userID],
		}
		if p, ok := state.Presences[userID]; ok {
			view.DisplayName = p.GetUsername()
			view.Connected = true
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			view.DisplayName = name
		} else if agent, ok := state.Bots[userID]; ok && agent.Name != "" {
			view.DisplayName = agent.Name
		}
		seats = append(seats, view)
	}
	return MatchStateSnapshot{
		Name:     state.Name,
		Phase:    gs.Phase,
		Round:    gs.Round,
		Contract: gs.HighestContract,
		Score:    gs.Score,
		Seats:    seats,
		Tick:     state.Tick,
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := encodeStruct(mh.snapshot(state))
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

func (mh *matchHandler) computeLabel(state *MatchState) (string, error) {
	return encodeLabel(domain.ComputeLabel(state.Game.State(), state.Name, state.GetOccupiedSeatCount()))
}

// updateLabel pushes the label only when it changed.
func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.computeLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

// seatSignal is the MatchSignal payload used by the seat_token RPC.
type seatSignal struct {
	Op     string `json:"op"`
	UserID string `json:"user_id"`
}

// SeatTokenResponse is returned by the seat_token RPC.
type SeatTokenResponse struct {
	Token  string `json:"token,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Seat   int    `json:"seat"`
	Error  string `json:"error,omitempty"`
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}

	var signal seatSignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil || signal.Op != "seat_token" {
		return state, signalReply(SeatTokenResponse{Seat: -1, Error: "unknown signal"})
	}
	if matchState.Tokens == nil {
		return state, signalReply(SeatTokenResponse{Seat: -1, Error: "seat tokens disabled"})
	}
	seat := matchState.seatOf(signal.UserID)
	if seat < 0 || isBotUserId(signal.UserID) {
		return state, signalReply(SeatTokenResponse{Seat: -1, Error: "not seated"})
	}

	gameID := matchState.Game.ID()
	token, err := matchState.Tokens.GenerateToken(signal.UserID, gameID, seat)
	if err != nil {
		logger.Error("MatchSignal: Failed to issue seat token for %s: %v", signal.UserID, err)
		return state, signalReply(SeatTokenResponse{Seat: -1, Error: "token unavailable"})
	}
	return state, signalReply(SeatTokenResponse{Token: token, GameID: gameID, Seat: seat})
}

func signalReply(resp SeatTokenResponse) string {
	b, _ := json.Marshal(resp)
	return string(b)
}
