package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by RPC errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

var gameNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// JoinGameRequest names the game to join.
type JoinGameRequest struct {
	Name string `json:"name"`
}

// SeatTokenRequest asks for a seat token in a running match.
type SeatTokenRequest struct {
	MatchID string `json:"match_id"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcJoinGame, rpcJoinGame); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSeatToken, rpcSeatToken)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Any belote lobby with a free seat.
	query := fmt.Sprintf("+label.%s:>=1 +label.game:belote +label.phase:WAITING", MatchLabelKey_OpenSeats)
	return findOrCreate(ctx, logger, nk, query, map[string]interface{}{})
}

// rpcJoinGame finds the match carrying a game name, creating it on first reference.
func rpcJoinGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req JoinGameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", codeInvalidArgument)
	}
	if !gameNamePattern.MatchString(req.Name) {
		return "", runtime.NewError("game name must be 1-32 letters, digits, '-' or '_'", codeInvalidArgument)
	}

	query := fmt.Sprintf("+label.game:belote +label.name:%s", req.Name)
	return findOrCreate(ctx, logger, nk, query, map[string]interface{}{"name": req.Name})
}

func findOrCreate(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, query string, params map[string]interface{}) (string, error) {
	limit := 10
	authoritative := true
	minSize := 0
	maxSize := 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", runtime.NewError("failed to list matches", codeInternal)
	}

	if len(matches) > 0 {
		return encodeResponse(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Seat assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameBelote, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("failed to create match", codeInternal)
	}
	logger.Info("Created match %s for query %q", matchID, query)

	return encodeResponse(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

// rpcSeatToken asks the match for a token binding the caller to their seat.
func rpcSeatToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}

	var req SeatTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", runtime.NewError("match_id is required", codeInvalidArgument)
	}

	signal, err := json.Marshal(seatSignal{Op: "seat_token", UserID: userID})
	if err != nil {
		return "", runtime.NewError("failed to encode signal", codeInternal)
	}
	result, err := nk.MatchSignal(ctx, req.MatchID, string(signal))
	if err != nil {
		logger.Warn("rpcSeatToken [User:%s]: Signal to %s failed: %v", userID, req.MatchID, err)
		return "", runtime.NewError("match not found", codeNotFound)
	}

	var resp SeatTokenResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		return "", runtime.NewError("bad match reply", codeInternal)
	}
	if resp.Error != "" {
		return "", runtime.NewError(resp.Error, codeFailedPrecondition)
	}
	return result, nil
}

func encodeResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("failed to encode response", codeInternal)
	}
	return string(b), nil
}
