package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
	"github.com/muurk/orderdesk/internal/version"
)

// EventsPath is the websocket endpoint of the order event feed
const EventsPath = "/api/events"

// eventsURL converts the base URL scheme to its websocket equivalent
func (c *Client) eventsURL() (string, error) {
	switch {
	case strings.HasPrefix(c.BaseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.BaseURL, "https://") + EventsPath, nil
	case strings.HasPrefix(c.BaseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.BaseURL, "http://") + EventsPath, nil
	}
	return "", fmt.Errorf("unsupported base URL scheme: %s", c.BaseURL)
}

// WatchEvents subscribes to the order event feed and calls handle for every
// event until ctx is cancelled or the connection drops. A cancelled context
// returns nil.
func (c *Client) WatchEvents(ctx context.Context, handle func(order.Event)) error {
	target, err := c.eventsURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent("cli"))
	if c.Token != "" {
		header.Set("Authorization", "Bearer "+c.Token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.HTTPClient.Timeout}
	conn, resp, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return NewStatusError(resp.StatusCode, "event feed rejected the subscription")
		}
		return NewNetworkError("failed to connect to event feed", err)
	}
	logging.Info("Subscribed to order events", zap.String("url", target))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return NewNetworkError("event feed closed", err)
		}

		var ev order.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logging.Warn("Dropping malformed event", zap.Error(err), zap.Int("size", len(data)))
			continue
		}
		handle(ev)
	}
}
