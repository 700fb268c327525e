package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Queued events per subscriber before it is dropped as too slow
	sendBuffer = 16
)

// subscriber is one event feed connection. Only writePump writes to conn.
type subscriber struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
	done       chan struct{}
	once       sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Hub fans order events out to websocket subscribers
type Hub struct {
	mu       sync.Mutex
	clients  map[*subscriber]struct{}
	closed   bool
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeWS upgrades the request and subscribes the connection to the feed
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied with an HTTP error
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	sub := &subscriber{
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[sub] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	logging.LogWebSocketEvent(sub.remoteAddr, "subscribed", 0)

	go h.writePump(sub)
	go h.readPump(sub)
}

// readPump discards client messages and detects disconnects
func (h *Hub) readPump(sub *subscriber) {
	defer h.wg.Done()
	defer h.remove(sub)

	sub.conn.SetReadLimit(maxMessageSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Subscriber connection error",
					zap.String("remote_addr", sub.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump delivers queued events and pings until the subscriber stops
func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
		h.remove(sub)
		h.wg.Done()
		logging.LogWebSocketEvent(sub.remoteAddr, "unsubscribed", 0)
	}()

	for {
		select {
		case data := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			logging.LogWebSocketEvent(sub.remoteAddr, "event_sent", len(data))

		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sub.done:
			_ = sub.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.clients, sub)
	h.mu.Unlock()
	sub.stop()
}

// Broadcast queues ev for every subscriber. Subscribers whose queue is full
// are disconnected.
func (h *Hub) Broadcast(ev order.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("Failed to encode event", zap.Error(err))
		return
	}

	var slow []*subscriber
	h.mu.Lock()
	for sub := range h.clients {
		select {
		case sub.send <- data:
		default:
			slow = append(slow, sub)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	for _, sub := range slow {
		logging.Warn("Dropping slow subscriber", zap.String("remote_addr", sub.remoteAddr))
		h.remove(sub)
	}

	logging.Debug("Broadcast event",
		zap.String("type", ev.Type),
		zap.String("order_number", ev.OrderNumber),
		zap.Int("subscribers", n),
	)
}

// Count returns the number of subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and waits for their goroutines
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.clients))
	for sub := range h.clients {
		subs = append(subs, sub)
	}
	h.clients = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	h.wg.Wait()
}
