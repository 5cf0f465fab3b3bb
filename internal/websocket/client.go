package websocket

import (
	"context"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one connected dashboard. It never sends us anything meaningful;
// traffic flows hub to browser.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	logger *slog.Logger
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run registers the client with the hub and pumps messages until the
// connection drops, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.logger.Debug("dashboard connected", "clients", c.hub.ClientCount())

	go c.writePump(ctx)
	c.readPump(ctx)

	c.logger.Debug("dashboard disconnected")
}

// readPump discards whatever the browser sends. Its only job is to notice
// the connection closing.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			c.logger.Debug("websocket read ended", "reason", err)
			return
		}
	}
}

// writePump forwards queued broadcasts to the browser and pings on a timer
// so half-dead connections get torn down.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
