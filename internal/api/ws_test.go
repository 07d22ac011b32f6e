package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantbridge/webtrader/internal/auth"
	"github.com/quantbridge/webtrader/internal/models"
)

func wsURL(server *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func waitForCond(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWebsocket_Push(t *testing.T) {
	g := newTestGateway(t)
	server := httptest.NewServer(g.e)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, g.token), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitForCond(t, "connection registered", func() bool { return g.hub.Connections() == 1 })

	g.hub.Publish("eTick.BTCUSDT.SMEX", models.TickData{Symbol: "BTCUSDT", Exchange: "SMEX", LastPrice: 123.5})

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if !strings.Contains(string(msg), `"topic":"eTick.BTCUSDT.SMEX"`) {
		t.Errorf("message = %s, missing topic", msg)
	}
	if !strings.Contains(string(msg), "123.5") {
		t.Errorf("message = %s, missing tick price", msg)
	}
}

func TestWebsocket_RejectsBadToken(t *testing.T) {
	g := newTestGateway(t)
	server := httptest.NewServer(g.e)
	defer server.Close()

	expired, err := auth.NewTokenService("test-secret", -time.Minute).Issue("vnpy")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "garbage"},
		{name: "expired token", token: expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, tt.token), nil)
			if err != nil {
				t.Fatalf("Dial() error = %v", err)
			}
			defer conn.Close()

			// the close must arrive before any event, even with traffic flowing
			g.hub.Publish("eTick.BTCUSDT.SMEX", models.TickData{Symbol: "BTCUSDT", Exchange: "SMEX"})

			conn.SetReadDeadline(time.Now().Add(3 * time.Second))
			_, _, err = conn.ReadMessage()
			closeErr, ok := err.(*websocket.CloseError)
			if !ok {
				t.Fatalf("ReadMessage() error = %v, want a close error", err)
			}
			if closeErr.Code != websocket.ClosePolicyViolation {
				t.Errorf("close code = %d, want %d", closeErr.Code, websocket.ClosePolicyViolation)
			}
			if g.hub.Connections() != 0 {
				t.Errorf("rejected connection was registered with the hub")
			}
		})
	}
}

func TestWebsocket_ConnectionsLimit(t *testing.T) {
	g := newTestGateway(t)
	server := httptest.NewServer(g.e)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/ws", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer res.Body.Close()
	// a plain GET is not a websocket handshake, the upgrader rejects it
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("plain GET /ws status = %d, want 400", res.StatusCode)
	}
}
