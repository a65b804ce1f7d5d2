package nakama

import "github.com/jimmmmothy/Belote-Enterprise/internal/app"

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcJoinGame finds the match carrying a given game name, creating it on first reference.
	RpcJoinGame = "join_game"

	// RpcSeatToken returns a signed token the caller presents to reclaim their seat after a reconnect.
	RpcSeatToken = "seat_token"

	// MatchNameBelote is the authoritative match handler name registered with Nakama.
	MatchNameBelote = "belote_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpBid             int64 = 1
	OpPlayCard        int64 = 2
	OpRequestNewRound int64 = 3
	OpResync          int64 = 4

	// Server -> Client events
	OpSendCards       int64 = 101 // send privately
	OpBiddingTurn     int64 = 102 // send privately
	OpBidPlaced       int64 = 103
	OpBiddingFinished int64 = 104
	OpPlayingTurn     int64 = 105 // send privately
	OpMovePlayed      int64 = 106
	OpTrickFinished   int64 = 107
	OpRoundFinished   int64 = 108
	OpRoundRestart    int64 = 109
	OpMatchState      int64 = 110
	OpGameError       int64 = 111
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventSendCards:       OpSendCards,
	app.EventBiddingTurn:     OpBiddingTurn,
	app.EventBidPlaced:       OpBidPlaced,
	app.EventBiddingFinished: OpBiddingFinished,
	app.EventPlayingTurn:     OpPlayingTurn,
	app.EventMovePlayed:      OpMovePlayed,
	app.EventTrickFinished:   OpTrickFinished,
	app.EventRoundFinished:   OpRoundFinished,
	app.EventRoundRestart:    OpRoundRestart,
}

// opCodeFor maps an event kind to its server op code.
func opCodeFor(kind app.EventKind) (int64, bool) {
	op, ok := eventOpCodes[kind]
	return op, ok
}

// Env keys read from runtime.RUNTIME_CTX_ENV.
const (
	envBotsEnabled      = "belote_bots_enabled"
	envBotMinDelay      = "belote_bot_min_delay_sec"
	envBotMaxDelay      = "belote_bot_max_delay_sec"
	envBotAutoFillDelay = "belote_bot_auto_fill_delay_sec"
	envSeatTokenSecret  = "belote_seat_token_secret"
)

// seatTokenIssuer is the iss claim on seat tokens minted by the match handler.
const seatTokenIssuer = "belote-nakama"

// metadataSeatToken is the join metadata key carrying a seat token.
const metadataSeatToken = "seat_token"
