package ws

import (
	"context"
	"encoding/json"
	"time"

	"todo_app/internal/logger"
	"todo_app/internal/rpc"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
	callTimeout    = 10 * time.Second
)

type Client struct {
	ID   int64
	Conn *websocket.Conn
	Send chan []byte

	Hub  *Hub
	Done chan struct{}
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  hub,
		Done: make(chan struct{}),
	}
}

// Run registers the client, starts the writer and blocks in the reader
// until the connection goes away.
func (c *Client) Run() {
	c.Hub.Register(c)
	go c.writePump()

	c.reply(simpleMessage{Type: MsgReady})
	c.readPump()
}

//read
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "client_id", c.ID, "error", err)
			}
			return
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, msg []byte) {
	var in InboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		c.reply(ErrorPayload{Type: MsgError, Error: "invalid message"})
		return
	}

	switch in.Type {
	case MsgPing:
		c.reply(simpleMessage{Type: MsgPong})
	case MsgCall:
		c.handleCall(ctx, in)
	default:
		c.reply(ErrorPayload{Type: MsgError, ID: in.ID, Error: "unknown message type: " + in.Type})
	}
}

func (c *Client) handleCall(ctx context.Context, in InboundMessage) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out, err := c.Hub.Registry.Call(ctx, "ws", in.Procedure, in.Input)
	if err != nil {
		logger.Debug("ws call failed", "client_id", c.ID, "procedure", in.Procedure, "error", err)
		c.reply(ErrorPayload{Type: MsgError, ID: in.ID, Error: rpc.PublicMessage(err)})
		return
	}
	c.reply(ResultPayload{Type: MsgResult, ID: in.ID, Result: out})
}

func (c *Client) reply(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("ws marshal reply", "client_id", c.ID, "error", err)
		return
	}
	if !c.Hub.SendTo(c, b) {
		logger.Warn("ws reply dropped", "client_id", c.ID)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "client_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
