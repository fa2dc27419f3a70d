package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// logsServer is a minimal logsSubscribe/logsUnsubscribe endpoint. Subscribe
// requests are confirmed with subID; every request read is forwarded to
// requests if the channel accepts it.
func logsServer(t *testing.T, subID int64, requests chan<- wsRequest) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- c

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				t.Errorf("unmarshal request: %v", err)
				return
			}
			if requests != nil {
				select {
				case requests <- req:
				default:
				}
			}
			if req.Method == "logsSubscribe" {
				resp := wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: subID}
				if err := c.WriteJSON(resp); err != nil {
					return
				}
			}
		}
	}))

	return server, conns
}

func wsURLFor(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSClient_Connect(t *testing.T) {
	server, _ := logsServer(t, 1, nil)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestWSClient_SubscribeLogs(t *testing.T) {
	requests := make(chan wsRequest, 4)
	server, conns := logsServer(t, 12345, requests)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	sub, err := client.SubscribeLogs(ctx, LogsFilter{
		Mentions: []string{"testprogram"},
	})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	select {
	case req := <-requests:
		if req.Method != "logsSubscribe" {
			t.Errorf("expected logsSubscribe, got %s", req.Method)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for subscribe request")
	}

	serverConn := <-conns
	notif := wsNotification{
		JSONRPC: "2.0",
		Method:  "logsNotification",
		Params: &wsNotificationParams{
			Subscription: 12345,
			Result: wsNotificationResult{
				Context: &wsContext{Slot: 100},
				Value: wsLogsValue{
					Signature: "testsig",
					Logs:      []string{"Program log: Test"},
					Err:       nil,
				},
			},
		},
	}
	if err := serverConn.WriteJSON(notif); err != nil {
		t.Fatalf("write notification: %v", err)
	}

	select {
	case got := <-sub.C():
		if got.Signature != "testsig" {
			t.Errorf("expected testsig, got %s", got.Signature)
		}
		if len(got.Logs) != 1 {
			t.Errorf("expected 1 log, got %d", len(got.Logs))
		}
		if got.Slot != 100 {
			t.Errorf("expected slot 100, got %d", got.Slot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWSClient_Unsubscribe(t *testing.T) {
	requests := make(chan wsRequest, 4)
	server, conns := logsServer(t, 7, requests)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	sub, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}
	<-requests // logsSubscribe

	if err := sub.Unsubscribe(ctx); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}

	select {
	case req := <-requests:
		if req.Method != "logsUnsubscribe" {
			t.Errorf("expected logsUnsubscribe, got %s", req.Method)
		}
		if len(req.Params) != 1 || req.Params[0] != float64(7) {
			t.Errorf("expected subscription ID 7, got %v", req.Params)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for unsubscribe request")
	}

	// A notification for the removed subscription must not be delivered.
	serverConn := <-conns
	notif := wsNotification{
		JSONRPC: "2.0",
		Method:  "logsNotification",
		Params: &wsNotificationParams{
			Subscription: 7,
			Result: wsNotificationResult{
				Value: wsLogsValue{Signature: "late"},
			},
		},
	}
	if err := serverConn.WriteJSON(notif); err != nil {
		t.Fatalf("write notification: %v", err)
	}

	select {
	case got, ok := <-sub.C():
		if ok {
			t.Errorf("unexpected notification after unsubscribe: %+v", got)
		}
	case <-time.After(200 * time.Millisecond):
	}

	// Double unsubscribe is safe.
	if err := sub.Unsubscribe(ctx); err != nil {
		t.Errorf("double Unsubscribe: %v", err)
	}
}

func TestWSClient_IdleConnectionStaysAlive(t *testing.T) {
	server, conns := logsServer(t, 5, nil)
	defer server.Close()

	// Read deadline far shorter than the idle period below; pong replies
	// to the ping loop must keep the connection up regardless.
	config := DefaultWSConfig()
	config.PingInterval = 100 * time.Millisecond
	config.ReadTimeout = 400 * time.Millisecond

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), &config)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	sub, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}
	serverConn := <-conns

	// No traffic at all for several read-timeout periods.
	time.Sleep(1200 * time.Millisecond)

	if client.closed.Load() {
		t.Fatal("client closed during idle period")
	}

	notif := wsNotification{
		JSONRPC: "2.0",
		Method:  "logsNotification",
		Params: &wsNotificationParams{
			Subscription: 5,
			Result: wsNotificationResult{
				Value: wsLogsValue{Signature: "afteridle"},
			},
		},
	}
	if err := serverConn.WriteJSON(notif); err != nil {
		t.Fatalf("write notification: %v", err)
	}

	select {
	case got, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription channel closed on an idle connection")
		}
		if got.Signature != "afteridle" {
			t.Errorf("expected afteridle, got %s", got.Signature)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification after idle period")
	}
}

func TestWSClient_StreamDeathClosesChannel(t *testing.T) {
	server, conns := logsServer(t, 3, nil)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	sub, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	serverConn := <-conns
	serverConn.Close()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel after stream death")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestWSClient_Close(t *testing.T) {
	server, _ := logsServer(t, 1, nil)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	sub, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if !client.closed.Load() {
		t.Error("client should be closed")
	}

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel after client Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	// Double close should be safe
	if err := client.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}
}

func TestWSClient_SubscribeAfterClose(t *testing.T) {
	server, _ := logsServer(t, 1, nil)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	client.Close()

	_, err = client.SubscribeLogs(ctx, LogsFilter{})
	if err == nil {
		t.Error("expected error subscribing after close")
	}
}

func TestWSClient_CustomConfig(t *testing.T) {
	server, _ := logsServer(t, 1, nil)
	defer server.Close()

	config := &WSClientConfig{
		HandshakeTimeout: 2 * time.Second,
		SubscribeTimeout: 3 * time.Second,
		PingInterval:     5 * time.Second,
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURLFor(server), config)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.config.PingInterval != 5*time.Second {
		t.Errorf("expected PingInterval 5s, got %v", client.config.PingInterval)
	}
}
