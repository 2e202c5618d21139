package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one dashboard connection. Events flow out; the only inbound
// traffic is subscription control messages.
type Client struct {
	id           string
	conn         *websocket.Conn
	hub          *Hub
	subscription *Subscription
	send         chan []byte

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient creates a client subscribed to entities, or to everything when entities is empty
func NewClient(conn *websocket.Conn, hub *Hub, entities []EntityType) *Client {
	return &Client{
		id:           uuid.New().String(),
		conn:         conn,
		hub:          hub,
		subscription: NewSubscription(entities),
		send:         make(chan []byte, sendBuffer),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Wants reports whether the client subscribed to entity
func (c *Client) Wants(entity EntityType) bool {
	return c.subscription.Wants(entity)
}

// Send queues an encoded event. A full buffer drops the message for this client only.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close stops the write pump and closes the connection. Safe to call repeatedly.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// ReadPump applies subscription changes until the peer goes away.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket unexpected close")
			}
			return
		}

		if err := c.subscription.ApplyJSON(data); err != nil {
			log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring WebSocket control message")
			continue
		}
		log.Debug().
			Str("client_id", c.id).
			Interface("entities", c.subscription.Entities()).
			Msg("WebSocket subscription changed")
	}
}

// WritePump writes queued events and keepalive pings. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
