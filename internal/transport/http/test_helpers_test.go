package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/config"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

type testEnv struct {
	ts       *httptest.Server
	registry *chat.Registry
	history  *chat.History
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	return newTestEnvWithConfig(t, cfg)
}

func newTestEnvWithConfig(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()

	logger := zerolog.New(nil)
	registry := chat.NewRegistry(&logger)
	history := chat.NewHistory(0)
	router := chat.NewRouter(registry, history, &logger)
	broker := NewBroker(&logger)

	cfg.Addr = ":0"

	server := NewServer(router, registry, history, broker, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry, history: history}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func dialWS(ctx context.Context, t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	})
	return conn
}

func sendFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, frameType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", frameType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", frameType, err)
	}
}

// mustReadEvent reads frames until one matches the wanted event name.
func mustReadEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) proto.Outbound {
	t.Helper()

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read while waiting for %q: %v", event, err)
		}
		if outbound.Type == proto.OutboundTypeEvent && outbound.Event == event {
			return outbound
		}
	}
}

func mustReadError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read while waiting for error: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
			return outbound.Error
		}
	}
}

func decodeMessage(t *testing.T, outbound proto.Outbound) proto.MessagePayload {
	t.Helper()

	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		t.Fatalf("re-marshal outbound data: %v", err)
	}
	var msg proto.MessagePayload
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode message payload: %v", err)
	}
	return msg
}

func decodeHistory(t *testing.T, outbound proto.Outbound) proto.HistoryPayload {
	t.Helper()

	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		t.Fatalf("re-marshal outbound data: %v", err)
	}
	var hist proto.HistoryPayload
	if err := json.Unmarshal(raw, &hist); err != nil {
		t.Fatalf("decode history payload: %v", err)
	}
	return hist
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
