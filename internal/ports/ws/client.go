package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"

	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1 << 16
	sendBuffer     = 64
)

// client is one WebSocket connection. Its ref is the transport ref the game
// addresses targeted events to.
type client struct {
	ref    string
	conn   *websocket.Conn
	logger runtime.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	gameID   string
	playerID string
}

func newClient(ref string, conn *websocket.Conn, logger runtime.Logger) *client {
	return &client{
		ref:    ref,
		conn:   conn,
		logger: logger.WithField("conn", ref),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *client) bind(gameID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID, c.playerID = gameID, playerID
}

func (c *client) binding() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.playerID
}

func (c *client) game() string {
	gameID, _ := c.binding()
	return gameID
}

func (c *client) requireBinding() (string, string, error) {
	gameID, playerID := c.binding()
	if gameID == "" {
		return "", "", fmt.Errorf("%w: join a game first", app.ErrUnknownPlayer)
	}
	return gameID, playerID, nil
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// sendJSON queues a message. A client that cannot keep up is dropped.
func (c *client) sendJSON(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal %s: %v", msg.Type, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, dropping connection")
		c.close()
	}
}

func (c *client) readPump(handle func(*client, ClientMessage)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read: %v", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(errorMessage(c.game(), fmt.Errorf("%w: %v", app.ErrMalformedInput, err)))
			continue
		}
		handle(c, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
