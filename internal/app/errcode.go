package app

import "errors"

// Stable codes sent to clients alongside a rejected input.
const (
	CodeNotYourTurn      = "not_your_turn"
	CodeAlreadyPlayed    = "already_played"
	CodeInvalidMove      = "invalid_move"
	CodeWrongPhase       = "wrong_phase"
	CodeGameFull         = "game_full"
	CodeNotEnoughPlayers = "not_enough_players"
	CodeUnknownPlayer    = "unknown_player"
	CodeGameNotFound     = "game_not_found"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrAlreadyPlayed, CodeAlreadyPlayed},
	{ErrInvalidMove, CodeInvalidMove},
	{ErrWrongPhase, CodeWrongPhase},
	{ErrGameFull, CodeGameFull},
	{ErrDuplicatePlayer, CodeGameFull},
	{ErrNotEnoughPlayers, CodeNotEnoughPlayers},
	{ErrUnknownPlayer, CodeUnknownPlayer},
	{ErrGameNotFound, CodeGameNotFound},
	{ErrInvalidSeatToken, CodeUnknownPlayer},
	{ErrMalformedInput, CodeBadRequest},
}

// ErrorCode maps an input error to its client code. Anything unrecognised,
// including a failed trick resolution or a recovered panic, is internal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
