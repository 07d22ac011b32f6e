package hub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// wsConn is the slice of *websocket.Conn the hub needs. Tests substitute
// an in-memory fake.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Client is one open push connection. The hub loop owns its registry entry;
// the write pump owns the underlying connection's outbound side.
type Client struct {
	ID     string
	IP     string
	Origin string

	hub  *Hub
	conn wsConn
	send chan []byte
}

func newClient(h *Hub, conn wsConn, ip, origin string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		IP:     ip,
		Origin: origin,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
	}
}

// writePump drains the outbound queue onto the connection and pings on the
// heartbeat interval. A failed write deregisters the client; a closed send
// channel means the hub already dropped it.
func (c *Client) writePump() {
	log := log.WithField("prefix", "Client.writePump")
	ticker := time.NewTicker(c.hub.heartbeat)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debugf("write to connection %v failed: %v", c.ID, err)
				c.hub.Unregister(c)
				return
			}
			deliveredMessagesMetric.Inc()
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debugf("ping to connection %v failed: %v", c.ID, err)
				c.hub.Unregister(c)
				return
			}
		}
	}
}

// readPump discards inbound frames (the channel is server-to-client only)
// and deregisters the client when the remote side goes away. It blocks
// until the connection ends, keeping the handler goroutine alive.
func (c *Client) readPump() {
	log := log.WithField("prefix", "Client.readPump")
	defer c.conn.Close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			log.Infof("connection %v closed: %v", c.ID, err)
			c.hub.Unregister(c)
			return
		}
	}
}
