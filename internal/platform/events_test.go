package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muurk/orderdesk/internal/order"
)

func TestWatchEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EventsPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteJSON(order.Event{Type: order.EventOrderCreated, OrderNumber: "ORD-000001"})
		_ = conn.WriteJSON(order.Event{Type: order.EventOrderCreated, OrderNumber: "ORD-000002"})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("secret")

	var got []string
	err := client.WatchEvents(context.Background(), func(ev order.Event) {
		got = append(got, ev.OrderNumber)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-000001", "ORD-000002"}, got)
}

func TestWatchEvents_Cancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewClient(server.URL).WatchEvents(ctx, func(order.Event) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchEvents did not return after cancel")
	}
}

func TestWatchEvents_BadScheme(t *testing.T) {
	err := NewClient("ftp://example.com").WatchEvents(context.Background(), func(order.Event) {})
	assert.Error(t, err)
}
