package stacksapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSClient_Connect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
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

	client, err := NewWSClient(context.Background(), wsURL(server), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestWSClient_SubscribeAndReceive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// Expect the subscribe frame, then push one notification.
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req struct {
			Method string            `json:"method"`
			Params map[string]string `json:"params"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal subscribe: %v", err)
			return
		}
		if req.Method != "subscribe" || req.Params["address"] != "SP000" {
			t.Errorf("unexpected subscribe frame: %s", msg)
		}

		notif := map[string]any{
			"method": "address_tx_update",
			"params": map[string]string{
				"address":   "SP000",
				"tx_id":     "0xabc",
				"tx_status": "pending",
			},
		}
		if err := conn.WriteJSON(notif); err != nil {
			return
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeAddressTransactions(context.Background(), "SP000")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.TxID != "0xabc" || notif.TxStatus != "pending" {
			t.Errorf("unexpected notification: %+v", notif)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestWSClient_SubscribeSamePrincipalReturnsSameChannel(t *testing.T) {
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

	client, err := NewWSClient(context.Background(), wsURL(server), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	first, err := client.SubscribeAddressTransactions(context.Background(), "SP000")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := client.SubscribeAddressTransactions(context.Background(), "SP000")
	if err != nil {
		t.Fatalf("subscribe again: %v", err)
	}
	if first != second {
		t.Error("watching the same principal twice must coalesce to one channel")
	}
}

func TestWSClient_CloseClosesSubscriptionChannels(t *testing.T) {
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

	client, err := NewWSClient(context.Background(), wsURL(server), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	ch, err := client.SubscribeAddressTransactions(context.Background(), "SP000")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case _, open := <-ch:
		if open {
			t.Error("expected channel closed after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after Close")
	}
}
