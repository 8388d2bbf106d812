package render

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FrameWriter is the part of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type FrameWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// HubStats receives per-client delivery events. A nil HubStats is allowed.
type HubStats interface {
	FrameSent()
	FrameDropped()
	ClientsChanged(n int)
}

// Hub fans frames out to websocket clients. Each client has its own
// buffered queue and writer goroutine: a slow client drops frames instead of
// stalling the simulation.
type Hub struct {
	logger   *zap.Logger
	stats    HubStats
	buffer   int
	maxFPS   float64
	mu       sync.Mutex
	clients  map[*Client]struct{}
	closed   bool
	writeTTL time.Duration
}

// NewHub returns a hub whose clients queue up to buffer frames and receive at
// most maxFPS frames per second (0 disables the cap).
func NewHub(logger *zap.Logger, stats HubStats, buffer int, maxFPS float64) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		logger:   logger,
		stats:    stats,
		buffer:   buffer,
		maxFPS:   maxFPS,
		clients:  make(map[*Client]struct{}),
		writeTTL: 5 * time.Second,
	}
}

// Client is one connected frame consumer.
type Client struct {
	hub     *Hub
	conn    FrameWriter
	frames  chan []byte
	limiter *rate.Limiter
	done    chan struct{}
	once    sync.Once
}

// Register attaches conn and starts its writer. The client is removed when
// a write fails or Unregister is called.
func (h *Hub) Register(conn FrameWriter) *Client {
	c := &Client{
		hub:    h,
		conn:   conn,
		frames: make(chan []byte, h.buffer),
		done:   make(chan struct{}),
	}
	if h.maxFPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(h.maxFPS), 1)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.stop()
		return c
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", zap.Int("clients", n))
	if h.stats != nil {
		h.stats.ClientsChanged(n)
	}
	go c.writeLoop()
	return c
}

// Unregister detaches c and closes its connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	c.stop()
	h.logger.Info("client disconnected", zap.Int("clients", n))
	if h.stats != nil {
		h.stats.ClientsChanged(n)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Render encodes fr once and queues it for every client. It never blocks.
func (h *Hub) Render(fr Frame) {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	data, err := json.Marshal(fr)
	if err != nil {
		h.logger.Error("encoding frame", zap.Error(err))
		return
	}
	for _, c := range clients {
		if c.limiter != nil && !c.limiter.Allow() {
			h.dropped()
			continue
		}
		select {
		case c.frames <- data:
		default:
			h.dropped()
		}
	}
}

// Close disconnects every client. Later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.stop()
	}
	if h.stats != nil {
		h.stats.ClientsChanged(0)
	}
}

func (h *Hub) dropped() {
	if h.stats != nil {
		h.stats.FrameDropped()
	}
}

// Send queues data for c alone, bypassing the rate limit. It reports false
// when the queue is full or the client is stopped.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.frames <- data:
		return true
	default:
		c.hub.dropped()
		return false
	}
}

// Done is closed once the client has been stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.frames:
			if d, ok := c.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
				_ = d.SetWriteDeadline(time.Now().Add(c.hub.writeTTL))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.logger.Debug("websocket write failed", zap.Error(err))
				c.hub.Unregister(c)
				return
			}
			if c.hub.stats != nil {
				c.hub.stats.FrameSent()
			}
		}
	}
}
