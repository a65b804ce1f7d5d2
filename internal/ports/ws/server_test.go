package ws

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/logging"
	"github.com/jimmmmothy/Belote-Enterprise/internal/table"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type  string          `json:"type"`
	Game  string          `json:"game"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorView      `json:"error"`
}

func newTestServer(t *testing.T, tokens *app.SeatTokenService) (*Server, string) {
	t.Helper()
	s := NewServer(logging.Discard(), tokens, table.WithGameOptions(func(id string) []app.Option {
		return []app.Option{app.WithRand(rand.New(rand.NewSource(7))), app.WithTrickPause(0)}
	}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, "ws" + strings.TrimPrefix(ts.URL, "http")
}

// peer is a test client. Frames skipped while waiting for one type are kept
// for later reads, since events may overtake a join reply.
type peer struct {
	t       *testing.T
	conn    *websocket.Conn
	backlog []received
}

func dial(t *testing.T, base string) *peer {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &peer{t: t, conn: conn}
}

func (p *peer) send(msg ClientMessage) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteJSON(msg))
}

// readUntil returns the first unread frame of the given type.
func (p *peer) readUntil(msgType string) received {
	p.t.Helper()
	for i, msg := range p.backlog {
		if msg.Type == msgType {
			p.backlog = append(p.backlog[:i:i], p.backlog[i+1:]...)
			return msg
		}
	}
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg received
		require.NoError(p.t, p.conn.ReadJSON(&msg), "waiting for %s", msgType)
		if msg.Type == msgType {
			return msg
		}
		p.backlog = append(p.backlog, msg)
	}
}

func (p *peer) join(game, player, token string) JoinedView {
	p.t.Helper()
	p.send(ClientMessage{Type: TypeJoin, Game: game, Player: player, Token: token})
	msg := p.readUntil(TypeJoined)
	var view JoinedView
	require.NoError(p.t, json.Unmarshal(msg.Data, &view))
	return view
}

func seatTable(t *testing.T, base, game string) ([]*peer, []JoinedView) {
	t.Helper()
	peers := make([]*peer, 4)
	views := make([]JoinedView, 4)
	for i := range peers {
		peers[i] = dial(t, base)
		views[i] = peers[i].join(game, fmt.Sprintf("p%d", i), "")
		require.Equal(t, i, views[i].Seat)
	}
	return peers, views
}

func TestJoinDealsAndPromptsTheOpeningBidder(t *testing.T) {
	_, base := newTestServer(t, nil)
	peers, views := seatTable(t, base, "g1")
	assert.True(t, views[3].Started)
	assert.Empty(t, views[0].Token, "no tokens without a secret")

	for i, p := range peers {
		msg := p.readUntil(string(app.EventSendCards))
		var payload app.SendCardsPayload
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, fmt.Sprintf("p%d", i), payload.PlayerID)
		assert.Len(t, payload.Hand, 5)
		assert.Equal(t, "g1", msg.Game)
	}

	turn := peers[0].readUntil(string(app.EventBiddingTurn))
	var payload app.BiddingTurnPayload
	require.NoError(t, json.Unmarshal(turn.Data, &payload))
	assert.Equal(t, "p0", payload.PlayerID)
}

func TestRejectedInputsGetErrorCodes(t *testing.T) {
	_, base := newTestServer(t, nil)
	peers, _ := seatTable(t, base, "g1")

	tests := []struct {
		name string
		from *peer
		msg  ClientMessage
		want string
	}{
		{"OutOfTurn", peers[2], ClientMessage{Type: TypeBid, Contract: "Clubs"}, app.CodeNotYourTurn},
		{"UnknownContract", peers[0], ClientMessage{Type: TypeBid, Contract: "Trumps"}, app.CodeBadRequest},
		{"PlayWhileBidding", peers[0], ClientMessage{Type: TypePlay, Suit: "hearts", Rank: "J"}, app.CodeWrongPhase},
		{"UnknownType", peers[1], ClientMessage{Type: "chat"}, app.CodeBadRequest},
		{"JoinTwice", peers[1], ClientMessage{Type: TypeJoin, Game: "g2", Player: "p1"}, app.CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.from.send(tt.msg)
			msg := tt.from.readUntil(TypeError)
			require.NotNil(t, msg.Error)
			assert.Equal(t, tt.want, msg.Error.Code)
		})
	}

	stranger := dial(t, base)
	stranger.send(ClientMessage{Type: TypeBid, Contract: "Clubs"})
	msg := stranger.readUntil(TypeError)
	assert.Equal(t, app.CodeUnknownPlayer, msg.Error.Code)

	require.NoError(t, stranger.conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg = stranger.readUntil(TypeError)
	assert.Equal(t, app.CodeBadRequest, msg.Error.Code)

	stranger.send(ClientMessage{Type: TypeJoin, Game: "g1", Player: "p9"})
	msg = stranger.readUntil(TypeError)
	assert.Equal(t, app.CodeGameFull, msg.Error.Code)
}

func TestBidIsBroadcastAndNextPromptTargeted(t *testing.T) {
	_, base := newTestServer(t, nil)
	peers, _ := seatTable(t, base, "g1")
	peers[0].readUntil(string(app.EventBiddingTurn))

	peers[0].send(ClientMessage{Type: TypeBid, Contract: "hearts"})

	for _, p := range peers {
		msg := p.readUntil(string(app.EventBidPlaced))
		var placed app.BidPlacedPayload
		require.NoError(t, json.Unmarshal(msg.Data, &placed))
		assert.Equal(t, "p0", placed.PlayerID)
		assert.Equal(t, "Hearts", placed.Contract.String())
	}
	peers[1].readUntil(string(app.EventBiddingTurn))
}

func TestRejoinNeedsSeatToken(t *testing.T) {
	_, base := newTestServer(t, app.NewSeatTokenService("ws-secret", TokenIssuer, time.Hour))
	peers, views := seatTable(t, base, "g1")
	require.NotEmpty(t, views[1].Token)

	require.NoError(t, peers[1].conn.Close())

	back := dial(t, base)
	back.send(ClientMessage{Type: TypeJoin, Game: "g1", Player: "p1", Token: "forged"})
	msg := back.readUntil(TypeError)
	assert.Equal(t, app.CodeUnknownPlayer, msg.Error.Code)

	view := back.join("g1", "p1", views[1].Token)
	assert.True(t, view.Rebound)
	assert.Equal(t, 1, view.Seat)

	cards := back.readUntil(string(app.EventSendCards))
	var payload app.SendCardsPayload
	require.NoError(t, json.Unmarshal(cards.Data, &payload))
	assert.Equal(t, "p1", payload.PlayerID)
	assert.Len(t, payload.Hand, 5)
}

func TestTablesEndpointListsGames(t *testing.T) {
	s, base := newTestServer(t, nil)
	seatTable(t, base, "g1")

	resp, err := http.Get("http" + strings.TrimPrefix(base, "ws") + "/tables")
	require.NoError(t, err)
	defer resp.Body.Close()

	var infos []table.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "g1", infos[0].ID)
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, infos[0].Players)
	assert.Equal(t, 1, s.Manager().Len())
}

func TestJoinsInOtherGamesDoNotWait(t *testing.T) {
	s, base := newTestServer(t, nil)

	busy := s.bindingsFor("busy")
	busy.mu.Lock()
	waiting := dial(t, base)
	waiting.send(ClientMessage{Type: TypeJoin, Game: "busy", Player: "p0"})

	free := dial(t, base)
	view := free.join("free", "p0", "")
	assert.Equal(t, 0, view.Seat)

	busy.mu.Unlock()
	msg := waiting.readUntil(TypeJoined)
	assert.Equal(t, "busy", msg.Game)
}
